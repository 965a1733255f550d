// Package plan normalizes the Architect's raw JSON output into the
// canonical Plan the rest of the pipeline consumes. Normalization is the
// hard gate: a plan that fails here abandons the run, so every downstream
// stage can assume the invariants enforced in this file.
package plan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pagewright/internal/policy"
	"pagewright/internal/types"
)

// ValidationError reports why a raw plan was rejected. The orchestrator
// treats it as fatal; there is no retry path for planning failures.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid plan: %s: %s", e.Field, e.Reason)
}

// RawPlan mirrors the JSON shape the Architect emits. Older prompt
// revisions used "type" instead of "contentType"; both are accepted.
type RawPlan struct {
	Slug               string              `json:"slug"`
	ContentType        string              `json:"contentType"`
	LegacyType         string              `json:"type"`
	InteractionPattern string              `json:"interactionPattern"`
	Files              []string            `json:"files"`
	Metadata           *types.PageMetadata `json:"metadata"`
	Features           []string            `json:"features"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// placeholderSlugs are literal template values models occasionally echo
// back instead of inventing a real slug.
var placeholderSlugs = map[string]bool{
	"your-slug-here": true,
	"slug-here":      true,
	"page-slug":      true,
	"example-page":   true,
	"todo":           true,
}

// Parse decodes the Architect's JSON and normalizes it in one step.
func Parse(data []byte) (*types.Plan, error) {
	var raw RawPlan
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("plan JSON parse failed: %w", err)
	}
	return Normalize(&raw)
}

// Normalize validates a raw plan and produces the canonical Plan.
//
// Hard failures (missing slug, unusable content type, no files, no
// metadata) return a *ValidationError. Soft gaps are repaired: a missing
// interaction pattern falls back to the policy default, and unknown
// patterns are coerced to it as well.
func Normalize(raw *RawPlan) (*types.Plan, error) {
	slug := strings.ToLower(strings.TrimSpace(raw.Slug))
	if slug == "" {
		return nil, &ValidationError{Field: "slug", Reason: "missing"}
	}
	if placeholderSlugs[slug] {
		return nil, &ValidationError{Field: "slug", Reason: fmt.Sprintf("placeholder value %q", slug)}
	}
	if !slugPattern.MatchString(slug) {
		return nil, &ValidationError{Field: "slug", Reason: fmt.Sprintf("%q is not kebab-case", slug)}
	}

	ctStr := raw.ContentType
	if ctStr == "" {
		ctStr = raw.LegacyType
	}
	if ctStr == "" {
		return nil, &ValidationError{Field: "contentType", Reason: "missing"}
	}
	ct := types.ContentType(strings.ToLower(strings.TrimSpace(ctStr)))
	if !types.ValidContentTypes[ct] {
		return nil, &ValidationError{Field: "contentType", Reason: fmt.Sprintf("unknown value %q", ctStr)}
	}

	if len(raw.Files) == 0 {
		return nil, &ValidationError{Field: "files", Reason: "missing"}
	}
	files := make([]string, 0, len(raw.Files))
	for _, f := range raw.Files {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if strings.HasPrefix(f, "/") || strings.Contains(f, "..") {
			return nil, &ValidationError{Field: "files", Reason: fmt.Sprintf("%q is not a safe relative path", f)}
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, &ValidationError{Field: "files", Reason: "no usable entries"}
	}

	if raw.Metadata == nil {
		return nil, &ValidationError{Field: "metadata", Reason: "missing"}
	}
	meta := *raw.Metadata
	if strings.TrimSpace(meta.Title) == "" {
		return nil, &ValidationError{Field: "metadata.title", Reason: "missing"}
	}

	pattern := types.InteractionPattern(strings.ToLower(strings.TrimSpace(raw.InteractionPattern)))
	if !types.ValidInteractionPatterns[pattern] {
		pattern = policy.DefaultPattern
	}

	return &types.Plan{
		Slug:               slug,
		ContentType:        ct,
		InteractionPattern: pattern,
		Files:              files,
		Metadata:           meta,
		Features:           raw.Features,
	}, nil
}
