package validate

import (
	"regexp"
	"strings"

	"pagewright/internal/policy"
	"pagewright/internal/types"
)

// =============================================================================
// PATTERN-CONFORMANCE TIER - THE UX CONTRACT
// =============================================================================

// Feature detectors. Heuristic on purpose: generated pages follow the
// conventions the Builder prompt establishes, and the detectors only need
// to agree with those conventions.
var (
	directionalRe = regexp.MustCompile(`(?i)(d-?pad|class=["'][^"']*direction|btn-(up|down|left|right)|arrow-(up|down|left|right)|id=["'](up|down|left|right)-?btn)`)
	touchRe       = regexp.MustCompile(`(?i)(ontouchstart|onclick|onpointerdown|addEventListener\(\s*["'](touchstart|touchend|click|pointerdown|keydown))`)
	actionRe      = regexp.MustCompile(`(?i)((action|fire|jump|shoot|start)-?(btn|button)|btn-?(action|fire|jump|start)|id=["']action)`)
	formRe        = regexp.MustCompile(`(?i)<(input|select|textarea|form)\b`)
	gameLoopRe    = regexp.MustCompile(`(?i)(requestAnimationFrame|game-?loop|setInterval\(\s*(update|tick|loop))`)
)

func hasFeature(lower string, f policy.Feature) bool {
	switch f {
	case policy.FeatureDirectionalControls:
		return directionalRe.MatchString(lower)
	case policy.FeatureTouchHandlers:
		return touchRe.MatchString(lower)
	case policy.FeatureActionControl:
		return actionRe.MatchString(lower)
	case policy.FeatureFormElements:
		return formRe.MatchString(lower)
	case policy.FeatureResponsiveBreakpoints:
		return strings.Contains(lower, "@media")
	case policy.FeatureGameLoopWrapper:
		return gameLoopRe.MatchString(lower)
	default:
		return false
	}
}

// checkPattern enforces the policy table for the plan's pattern. The
// severity of each finding depends on the pattern: the table says what must
// or must not exist, this switch says how bad each miss is.
func (v *Validator) checkPattern(markup, lower string, p *types.Plan, report *Report) {
	pattern := p.InteractionPattern
	if !types.ValidInteractionPatterns[pattern] {
		pattern = policy.DefaultPattern
	}
	rules := policy.Lookup(pattern)

	present := func(f policy.Feature) bool { return hasFeature(lower, f) }

	switch pattern {
	case types.PatternDirectionalMovement:
		if !present(policy.FeatureDirectionalControls) {
			report.addf(types.IssueMissingDirectional, types.SeverityCritical,
				"pattern %s requires an on-screen directional control surface", pattern)
		}
		if !present(policy.FeatureResponsiveBreakpoints) {
			report.addf(types.IssueNoResponsiveBreakpoints, types.SeverityCritical,
				"pattern %s requires responsive breakpoint rules", pattern)
		}

	case types.PatternDirectTouch:
		if present(policy.FeatureDirectionalControls) {
			report.addf(types.IssueUnwantedDirectional, types.SeverityCritical,
				"pattern %s forbids a directional control surface", pattern)
		}
		if !present(policy.FeatureTouchHandlers) {
			report.addf(types.IssueMissingTouchHandlers, types.SeverityCritical,
				"pattern %s requires touch, click or keyboard handlers", pattern)
		}
		if p.ContentType == types.ContentGame && !present(policy.FeatureResponsiveBreakpoints) {
			report.addf(types.IssueNoResponsiveBreakpoints, types.SeverityWarning,
				"game content should include responsive breakpoint rules")
		}

	case types.PatternHybridControls:
		if !present(policy.FeatureDirectionalControls) {
			report.addf(types.IssueMissingDirectional, types.SeverityCritical,
				"pattern %s requires an on-screen directional control surface", pattern)
		}
		if !present(policy.FeatureResponsiveBreakpoints) {
			report.addf(types.IssueNoResponsiveBreakpoints, types.SeverityCritical,
				"pattern %s requires responsive breakpoint rules", pattern)
		}
		if !present(policy.FeatureActionControl) {
			report.addf(types.IssueMissingActionControl, types.SeverityWarning,
				"pattern %s expects a distinct action control", pattern)
		}

	case types.PatternFormBased:
		if present(policy.FeatureDirectionalControls) {
			report.addf(types.IssueUnwantedDirectional, types.SeverityCritical,
				"pattern %s forbids a directional control surface", pattern)
		}
		if !present(policy.FeatureFormElements) {
			report.addf(types.IssueMissingFormElements, types.SeverityWarning,
				"pattern %s expects form input elements", pattern)
		}

	case types.PatternPassiveScroll:
		for _, f := range rules.Forbidden {
			if present(f) {
				report.addf(types.IssueUnwantedGameControls, types.SeverityCritical,
					"pattern %s forbids %s", pattern, f)
			}
		}
	}
}
