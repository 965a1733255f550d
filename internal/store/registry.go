package store

import (
	"database/sql"
	"fmt"
	"time"

	"pagewright/internal/logging"
	"pagewright/internal/types"
)

// Project is one published page in the registry.
type Project struct {
	Slug        string
	Title       string
	Icon        string
	Description string
	Collection  string
	Score       int
	PublishedAt time.Time
}

// RegisterProject upserts a published page into the registry.
func (s *Store) RegisterProject(slug string, meta types.PageMetadata, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO projects (slug, title, icon, description, collection, score, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			icon = excluded.icon,
			description = excluded.description,
			collection = excluded.collection,
			score = excluded.score,
			published_at = excluded.published_at`,
		slug, meta.Title, meta.Icon, meta.Description, meta.Collection, score, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to register project %s: %w", slug, err)
	}

	logging.Store("registered project %s (%s)", slug, meta.Title)
	return nil
}

// SlugExists reports whether a slug is already taken. Callers use this
// before the Architect commits to a slug, avoiding cross-run collisions.
func (s *Store) SlugExists(slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow("SELECT 1 FROM projects WHERE slug = ?", slug).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return true, nil
}

// Projects lists published pages, newest first.
func (s *Store) Projects() ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT slug, title, COALESCE(icon, ''), COALESCE(description, ''),
		       COALESCE(collection, ''), COALESCE(score, 0), published_at
		FROM projects
		ORDER BY published_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Slug, &p.Title, &p.Icon, &p.Description,
			&p.Collection, &p.Score, &p.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
