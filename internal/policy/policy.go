// Package policy holds the fixed interaction-pattern table: which page
// features each pattern requires and which it forbids.
//
// The table is the single source of truth for two call sites - the Builder's
// generation instructions and the Tester's conformance rules. Adding a new
// interaction pattern means exactly one row here plus one branch in the
// validator, nowhere else.
package policy

import (
	"fmt"
	"strings"

	"pagewright/internal/types"
)

// Feature names a concrete page capability the policy can require or forbid.
type Feature string

const (
	// FeatureDirectionalControls is an on-screen directional control
	// surface (D-pad or arrow button cluster).
	FeatureDirectionalControls Feature = "directional-control-surface"
	// FeatureActionControl is a distinct action button/zone separate from
	// movement controls (fire, jump, interact).
	FeatureActionControl Feature = "action-control"
	// FeatureTouchHandlers means touch/click or keyboard event handlers.
	FeatureTouchHandlers Feature = "touch-handlers"
	// FeatureFormElements means form input elements (input/select/textarea).
	FeatureFormElements Feature = "form-elements"
	// FeatureResponsiveBreakpoints means media-query breakpoint rules.
	FeatureResponsiveBreakpoints Feature = "responsive-breakpoints"
	// FeatureGameLoopWrapper is a game-loop container element
	// (animation-frame driven play area).
	FeatureGameLoopWrapper Feature = "game-loop-wrapper"
)

// Rules lists the required and forbidden features for one pattern.
type Rules struct {
	Required  []Feature
	Forbidden []Feature
}

// DefaultPattern is used when a plan carries no interaction pattern.
const DefaultPattern = types.PatternDirectTouch

// table maps each interaction pattern to its rules. Fixed data; never
// mutated at runtime.
var table = map[types.InteractionPattern]Rules{
	types.PatternDirectionalMovement: {
		Required: []Feature{FeatureDirectionalControls, FeatureResponsiveBreakpoints},
	},
	types.PatternDirectTouch: {
		Required:  []Feature{FeatureTouchHandlers},
		Forbidden: []Feature{FeatureDirectionalControls},
	},
	types.PatternHybridControls: {
		Required: []Feature{FeatureDirectionalControls, FeatureActionControl, FeatureResponsiveBreakpoints},
	},
	types.PatternFormBased: {
		Required:  []Feature{FeatureFormElements},
		Forbidden: []Feature{FeatureDirectionalControls},
	},
	types.PatternPassiveScroll: {
		Forbidden: []Feature{FeatureDirectionalControls, FeatureGameLoopWrapper},
	},
}

// Lookup returns the rules for a pattern, falling back to the default
// pattern's rules when the pattern is empty or unknown.
func Lookup(p types.InteractionPattern) Rules {
	if r, ok := table[p]; ok {
		return r
	}
	return table[DefaultPattern]
}

// Patterns returns all patterns in the table.
func Patterns() []types.InteractionPattern {
	return []types.InteractionPattern{
		types.PatternDirectionalMovement,
		types.PatternDirectTouch,
		types.PatternHybridControls,
		types.PatternFormBased,
		types.PatternPassiveScroll,
	}
}

// featureInstruction phrases one feature as a generation instruction.
var featureInstruction = map[Feature]string{
	FeatureDirectionalControls:   "an on-screen directional control surface (D-pad style buttons) that works with touch",
	FeatureActionControl:         "a distinct action control (button or tap zone) separate from the movement controls",
	FeatureTouchHandlers:         "touch/click (or keyboard) event handlers driving the interaction",
	FeatureFormElements:          "form input elements for the user to fill in",
	FeatureResponsiveBreakpoints: "responsive @media breakpoint rules so the layout adapts to small screens",
	FeatureGameLoopWrapper:       "a game-loop play area",
}

// BuilderGuidance renders the pattern's rules as prompt text for the Builder.
// Because it reads the same table the validator enforces, generation
// instructions and validation rules cannot drift apart.
func BuilderGuidance(p types.InteractionPattern) string {
	r := Lookup(p)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Interaction pattern: %s\n", effective(p))
	if len(r.Required) > 0 {
		sb.WriteString("The page MUST include:\n")
		for _, f := range r.Required {
			fmt.Fprintf(&sb, "- %s\n", featureInstruction[f])
		}
	}
	if len(r.Forbidden) > 0 {
		sb.WriteString("The page MUST NOT include:\n")
		for _, f := range r.Forbidden {
			fmt.Fprintf(&sb, "- %s\n", featureInstruction[f])
		}
	}
	return sb.String()
}

// effective resolves empty/unknown patterns to the default.
func effective(p types.InteractionPattern) types.InteractionPattern {
	if _, ok := table[p]; ok {
		return p
	}
	return DefaultPattern
}

// Requires reports whether the pattern requires the feature.
func Requires(p types.InteractionPattern, f Feature) bool {
	for _, rf := range Lookup(p).Required {
		if rf == f {
			return true
		}
	}
	return false
}

// Forbids reports whether the pattern forbids the feature.
func Forbids(p types.InteractionPattern, f Feature) bool {
	for _, ff := range Lookup(p).Forbidden {
		if ff == f {
			return true
		}
	}
	return false
}
