package validate

// Per-severity score penalties. These are policy constants, not derived
// data, and they stay in lockstep with the orchestrator's acceptance rule:
// critical issues block acceptance at any score, warnings only dent it.
const (
	CriticalPenalty = 20
	WarningPenalty  = 5
)

// Score reduces an issue/warning count to a 0-100 quality score.
// Pure function: start at 100, subtract fixed penalties, floor at zero.
func Score(criticals, warnings int) int {
	score := 100 - criticals*CriticalPenalty - warnings*WarningPenalty
	if score < 0 {
		return 0
	}
	return score
}

// ScoreReport scores a validation report.
func ScoreReport(r Report) int {
	return Score(len(r.Issues), len(r.Warnings))
}
