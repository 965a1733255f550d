package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pagewright/internal/types"
)

type fakeRegistry struct {
	slug  string
	meta  types.PageMetadata
	score int
	calls int
}

func (f *fakeRegistry) RegisterProject(slug string, meta types.PageMetadata, score int) error {
	f.slug, f.meta, f.score = slug, meta, score
	f.calls++
	return nil
}

type fakeCommitter struct {
	paths   []string
	message string
}

func (f *fakeCommitter) Commit(paths []string, message string) error {
	f.paths, f.message = paths, message
	return nil
}

func snakePlan() *types.Plan {
	return &types.Plan{
		Slug:               "snake-game",
		ContentType:        types.ContentGame,
		InteractionPattern: types.PatternDirectionalMovement,
		Files:              []string{"snake-game.html"},
		Metadata:           types.PageMetadata{Title: "Snake", Icon: "🐍"},
	}
}

func TestPersist_WritesFilesAndRegisters(t *testing.T) {
	dir := t.TempDir()
	registry := &fakeRegistry{}
	pub := NewWorkspacePublisher(dir, registry, nil)

	doc := &types.Documentation{
		Metadata:    types.PageMetadata{Title: "Snake!", Icon: "🐍", Description: "Eat and grow"},
		ReleaseText: "A new snake game is live.",
	}
	files := map[string]string{"snake-game.html": "<!DOCTYPE html><html></html>"}

	if err := pub.Persist(context.Background(), snakePlan(), files, doc, 95); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "snake-game.html"))
	if err != nil {
		t.Fatalf("published file missing: %v", err)
	}
	if string(data) != files["snake-game.html"] {
		t.Error("published content differs from generated content")
	}

	if registry.calls != 1 || registry.slug != "snake-game" {
		t.Errorf("registry not updated: %+v", registry)
	}
	// Scribe's refined metadata wins over the plan's
	if registry.meta.Title != "Snake!" {
		t.Errorf("registered title = %q, want Scribe's refinement", registry.meta.Title)
	}
	if registry.score != 95 {
		t.Errorf("registered score = %d", registry.score)
	}
}

func TestPersist_CommitsWithReleaseText(t *testing.T) {
	dir := t.TempDir()
	committer := &fakeCommitter{}
	pub := NewWorkspacePublisher(dir, &fakeRegistry{}, committer)

	doc := &types.Documentation{ReleaseText: "A new snake game is live."}
	files := map[string]string{"snake-game.html": "<html></html>"}

	if err := pub.Persist(context.Background(), snakePlan(), files, doc, 90); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if len(committer.paths) != 1 {
		t.Fatalf("committed paths = %v", committer.paths)
	}
	if committer.message != "A new snake game is live." {
		t.Errorf("commit message = %q", committer.message)
	}
}

func TestPersist_NoFilesIsAnError(t *testing.T) {
	pub := NewWorkspacePublisher(t.TempDir(), nil, nil)
	err := pub.Persist(context.Background(), snakePlan(), map[string]string{}, nil, 0)
	if err == nil {
		t.Fatal("expected error when no files match the plan")
	}
}

func TestPersist_FallbackMetadataStillRegisters(t *testing.T) {
	registry := &fakeRegistry{}
	pub := NewWorkspacePublisher(t.TempDir(), registry, nil)

	files := map[string]string{"snake-game.html": "<html></html>"}
	if err := pub.Persist(context.Background(), snakePlan(), files, nil, 60); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if registry.meta.Title != "Snake" {
		t.Errorf("fallback should register the plan's metadata, got %q", registry.meta.Title)
	}
}
