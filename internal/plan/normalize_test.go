package plan

import (
	"errors"
	"testing"

	"pagewright/internal/types"
)

func validRaw() *RawPlan {
	return &RawPlan{
		Slug:               "snake-game",
		ContentType:        "game",
		InteractionPattern: "directional-movement",
		Files:              []string{"snake-game.html"},
		Metadata:           &types.PageMetadata{Title: "Snake", Icon: "🐍", Description: "Classic snake"},
	}
}

func TestNormalize_Valid(t *testing.T) {
	p, err := Normalize(validRaw())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.Slug != "snake-game" {
		t.Errorf("slug = %q", p.Slug)
	}
	if p.ContentType != types.ContentGame {
		t.Errorf("contentType = %q", p.ContentType)
	}
	if p.InteractionPattern != types.PatternDirectionalMovement {
		t.Errorf("pattern = %q", p.InteractionPattern)
	}
	if p.MarkupFile() != "snake-game.html" {
		t.Errorf("markup file = %q", p.MarkupFile())
	}
}

func TestNormalize_LegacyTypeField(t *testing.T) {
	raw := validRaw()
	raw.ContentType = ""
	raw.LegacyType = "game"

	p, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.ContentType != types.ContentGame {
		t.Errorf("contentType = %q", p.ContentType)
	}
}

func TestNormalize_DefaultsPattern(t *testing.T) {
	for _, pattern := range []string{"", "wiggle-mode"} {
		raw := validRaw()
		raw.InteractionPattern = pattern

		p, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", pattern, err)
		}
		if p.InteractionPattern != types.PatternDirectTouch {
			t.Errorf("pattern %q normalized to %q, want direct-touch", pattern, p.InteractionPattern)
		}
	}
}

func TestNormalize_HardFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawPlan)
		field  string
	}{
		{"missing slug", func(r *RawPlan) { r.Slug = "" }, "slug"},
		{"placeholder slug", func(r *RawPlan) { r.Slug = "your-slug-here" }, "slug"},
		{"non kebab slug", func(r *RawPlan) { r.Slug = "Snake Game!" }, "slug"},
		{"missing content type", func(r *RawPlan) { r.ContentType = "" }, "contentType"},
		{"unknown content type", func(r *RawPlan) { r.ContentType = "podcast" }, "contentType"},
		{"no files", func(r *RawPlan) { r.Files = nil }, "files"},
		{"blank files only", func(r *RawPlan) { r.Files = []string{"  "} }, "files"},
		{"path escape", func(r *RawPlan) { r.Files = []string{"../etc/passwd"} }, "files"},
		{"missing metadata", func(r *RawPlan) { r.Metadata = nil }, "metadata"},
		{"untitled metadata", func(r *RawPlan) { r.Metadata = &types.PageMetadata{} }, "metadata.title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			_, err := Normalize(raw)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestParse_FromModelResponse(t *testing.T) {
	data := []byte(`{
		"slug": "recipe-carbonara",
		"type": "recipe",
		"files": ["recipe-carbonara.html"],
		"metadata": {"title": "Carbonara", "icon": "🍝", "description": "A recipe"}
	}`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.ContentType != types.ContentRecipe {
		t.Errorf("contentType = %q", p.ContentType)
	}
	if p.InteractionPattern != types.PatternDirectTouch {
		t.Errorf("pattern = %q, want default", p.InteractionPattern)
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"slug": `)); err == nil {
		t.Fatal("expected error")
	}
}
