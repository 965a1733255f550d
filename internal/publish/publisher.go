// Package publish moves finished pages from the pipeline into the content
// workspace and records them in the project registry.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pagewright/internal/logging"
	"pagewright/internal/types"
)

// Persister is the pipeline's persistence boundary. Failures are reported
// to the caller but never retried by the pipeline itself.
type Persister interface {
	Persist(ctx context.Context, plan *types.Plan, files map[string]string, doc *types.Documentation, score int) error
}

// Registry is the slice of the store the publisher needs.
type Registry interface {
	RegisterProject(slug string, meta types.PageMetadata, score int) error
}

// WorkspacePublisher writes pages into the workspace's pages directory and
// registers them. An optional Committer records each publish in git.
type WorkspacePublisher struct {
	pagesDir  string
	registry  Registry
	committer Committer
}

// Committer commits published files. Implemented by GitCommitter; nil
// disables commit-on-publish.
type Committer interface {
	Commit(paths []string, message string) error
}

// NewWorkspacePublisher creates a publisher. registry may be nil in tests;
// committer may be nil when git publishing is disabled.
func NewWorkspacePublisher(pagesDir string, registry Registry, committer Committer) *WorkspacePublisher {
	return &WorkspacePublisher{
		pagesDir:  pagesDir,
		registry:  registry,
		committer: committer,
	}
}

// Persist writes the final files, registers the project, and optionally
// commits. The metadata patch comes from the Scribe; when the Scribe fell
// back, doc still carries the plan's original metadata.
func (p *WorkspacePublisher) Persist(ctx context.Context, plan *types.Plan, files map[string]string, doc *types.Documentation, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(p.pagesDir, 0755); err != nil {
		return fmt.Errorf("failed to create pages directory: %w", err)
	}

	written := make([]string, 0, len(files))
	for _, rel := range plan.Files {
		content, ok := files[rel]
		if !ok {
			continue
		}
		dst := filepath.Join(p.pagesDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
		written = append(written, dst)
	}
	if len(written) == 0 {
		return fmt.Errorf("no files to publish for %s", plan.Slug)
	}

	meta := plan.Metadata
	if doc != nil {
		meta = doc.Metadata
	}
	if p.registry != nil {
		if err := p.registry.RegisterProject(plan.Slug, meta, score); err != nil {
			return fmt.Errorf("failed to register project: %w", err)
		}
	}

	if p.committer != nil {
		message := fmt.Sprintf("Publish %s", plan.Slug)
		if doc != nil && doc.ReleaseText != "" {
			message = doc.ReleaseText
		}
		if err := p.committer.Commit(written, message); err != nil {
			return fmt.Errorf("failed to commit published files: %w", err)
		}
	}

	logging.Publish("published %s (%d files, score %d)", plan.Slug, len(written), score)
	return nil
}
