package pipeline

import (
	"context"

	"pagewright/internal/logging"
	"pagewright/internal/types"
	"pagewright/internal/validate"
)

// test runs the automated validation tiers and, when enabled, the
// model-based semantic tier. Never mutates stored artifacts.
func (o *Orchestrator) test(ctx context.Context, markup string, p *types.Plan) validate.Report {
	timer := logging.StartTimer(logging.CategoryTester, "tester stage")
	defer timer.Stop()

	report := o.validator.Validate(markup, p)

	if o.semantic != nil {
		extra := o.semantic.Review(ctx, markup, p)
		report = validate.Merge(report, extra)
	}

	logging.Tester("%s: %d critical, %d warnings", p.Slug, len(report.Issues), len(report.Warnings))
	return report
}

// synthesizeFailure records a hard Builder failure as a critical finding so
// it consumes an attempt and feeds into the next prompt like any other issue.
func synthesizeFailure(err error) []types.Issue {
	return []types.Issue{{
		Code:     types.IssueIncompleteDocument,
		Message:  "generation failed: " + err.Error(),
		Severity: types.SeverityCritical,
	}}
}
