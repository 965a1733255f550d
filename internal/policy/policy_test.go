package policy

import (
	"strings"
	"testing"

	"pagewright/internal/types"
)

func TestLookup_AllPatternsHaveRules(t *testing.T) {
	for _, p := range Patterns() {
		r := Lookup(p)
		if len(r.Required) == 0 && len(r.Forbidden) == 0 {
			t.Errorf("pattern %s has an empty rule set", p)
		}
	}
}

func TestLookup_UnknownFallsBackToDefault(t *testing.T) {
	got := Lookup(types.InteractionPattern("telepathy"))
	want := Lookup(DefaultPattern)
	if len(got.Required) != len(want.Required) || len(got.Forbidden) != len(want.Forbidden) {
		t.Error("unknown pattern should resolve to the default pattern's rules")
	}
}

func TestRequiresAndForbids(t *testing.T) {
	if !Requires(types.PatternDirectionalMovement, FeatureDirectionalControls) {
		t.Error("directional-movement must require directional controls")
	}
	if !Forbids(types.PatternDirectTouch, FeatureDirectionalControls) {
		t.Error("direct-touch must forbid directional controls")
	}
	if Forbids(types.PatternHybridControls, FeatureDirectionalControls) {
		t.Error("hybrid-controls must not forbid directional controls")
	}
}

func TestBuilderGuidance_ReflectsTable(t *testing.T) {
	for _, p := range Patterns() {
		text := BuilderGuidance(p)
		r := Lookup(p)
		if len(r.Required) > 0 && !strings.Contains(text, "MUST include") {
			t.Errorf("%s guidance missing required section", p)
		}
		if len(r.Forbidden) > 0 && !strings.Contains(text, "MUST NOT include") {
			t.Errorf("%s guidance missing forbidden section", p)
		}
		for _, f := range append(append([]Feature{}, r.Required...), r.Forbidden...) {
			if featureInstruction[f] == "" {
				t.Errorf("feature %s has no instruction text", f)
			}
		}
	}
}

func TestBuilderGuidance_DefaultsUnknownPattern(t *testing.T) {
	text := BuilderGuidance("")
	if !strings.Contains(text, string(DefaultPattern)) {
		t.Errorf("guidance for empty pattern should name the default, got:\n%s", text)
	}
}
