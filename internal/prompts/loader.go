// Package prompts loads the per-role system prompts (architect, builder,
// tester, scribe). Built-in defaults always exist; a prompts directory can
// override any role, and overrides hot-reload while the process runs so
// prompt tuning never needs a restart.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pagewright/internal/logging"
)

// Role names a pipeline stage persona.
type Role string

const (
	RoleArchitect Role = "architect"
	RoleBuilder   Role = "builder"
	RoleTester    Role = "tester"
	RoleScribe    Role = "scribe"
)

// Roles lists all personas.
var Roles = []Role{RoleArchitect, RoleBuilder, RoleTester, RoleScribe}

// Loader serves role prompts, preferring on-disk overrides.
type Loader struct {
	dir string

	mu        sync.RWMutex
	overrides map[Role]string

	watcher *fsnotify.Watcher
	done    chan struct{}

	// debounce timer for editor save bursts
	reloadTimer *time.Timer
	timerMu     sync.Mutex
}

// NewLoader creates a loader. dir may be empty, in which case only the
// built-in prompts are served and Watch is a no-op.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:       dir,
		overrides: make(map[Role]string),
		done:      make(chan struct{}),
	}
}

// Load reads all override files once. Missing files are fine.
func (l *Loader) Load() error {
	if l.dir == "" {
		return nil
	}

	loaded := make(map[Role]string)
	for _, role := range Roles {
		path := filepath.Join(l.dir, string(role)+".md")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read prompt %s: %w", path, err)
		}
		text := strings.TrimSpace(string(data))
		if text != "" {
			loaded[role] = text
		}
	}

	l.mu.Lock()
	l.overrides = loaded
	l.mu.Unlock()

	logging.Prompts("loaded %d prompt overrides from %s", len(loaded), l.dir)
	return nil
}

// Get returns the prompt for a role: the override when one exists,
// otherwise the built-in default.
func (l *Loader) Get(role Role) string {
	l.mu.RLock()
	text, ok := l.overrides[role]
	l.mu.RUnlock()
	if ok {
		return text
	}
	return defaults[role]
}

// Watch starts hot reloading override files. Safe to skip; Load-once
// behavior remains correct without it.
func (l *Loader) Watch() error {
	if l.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create prompt watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}
	l.watcher = watcher

	go l.watchLoop()
	logging.Prompts("watching %s for prompt changes", l.dir)
	return nil
}

func (l *Loader) watchLoop() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}
			l.scheduleReload()
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			logging.Prompts("prompt watcher error: %v", err)
		case <-l.done:
			return
		}
	}
}

// scheduleReload debounces reloads; editors fire several events per save.
func (l *Loader) scheduleReload() {
	l.timerMu.Lock()
	defer l.timerMu.Unlock()

	if l.reloadTimer != nil {
		l.reloadTimer.Stop()
	}
	l.reloadTimer = time.AfterFunc(200*time.Millisecond, func() {
		if err := l.Load(); err != nil {
			logging.Prompts("prompt reload failed: %v", err)
		} else {
			logging.Prompts("prompts reloaded")
		}
	})
}

// Close stops the watcher.
func (l *Loader) Close() error {
	close(l.done)
	l.timerMu.Lock()
	if l.reloadTimer != nil {
		l.reloadTimer.Stop()
	}
	l.timerMu.Unlock()
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
