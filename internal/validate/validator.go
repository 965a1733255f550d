// Package validate is the Tester stage's automated check suite. It runs in
// two tiers over raw generated markup: a structural tier that catches
// generation failures (truncation, wrapper leakage, missing boilerplate)
// and a pattern tier that enforces the interaction-pattern policy table.
//
// Validation is deterministic and does no I/O: the same (markup, plan) pair
// always yields the same findings, so retry feedback stays meaningful.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"pagewright/internal/types"
)

// Report is the validator's output: critical issues fail the attempt,
// warnings only reduce the score.
type Report struct {
	Issues   []types.Issue
	Warnings []types.Issue
}

// Options tunes the non-policy thresholds.
type Options struct {
	// MaxCanvasWidth is the largest fixed canvas width considered
	// mobile-friendly. Zero means the default of 800.
	MaxCanvasWidth int
}

// Validator runs the automated tiers.
type Validator struct {
	opts Options
}

// New creates a validator.
func New(opts Options) *Validator {
	if opts.MaxCanvasWidth <= 0 {
		opts.MaxCanvasWidth = 800
	}
	return &Validator{opts: opts}
}

// =============================================================================
// STRUCTURAL TIER - GENERATION FAILURES, TYPE-AGNOSTIC
// =============================================================================

// structuralRule detects one structural defect in raw markup.
// Raw-text matching is deliberate: truncation and fence leakage are
// properties of the text the model produced, and an HTML parser would
// normalize exactly the evidence we need to see.
type structuralRule struct {
	code     types.IssueCode
	severity types.Severity
	message  string
	// violated reports whether the defect is present.
	violated func(markup, lower string) bool
}

var (
	viewportRe    = regexp.MustCompile(`<meta[^>]+name=["']viewport["']`)
	themeLinkRe   = regexp.MustCompile(`<link[^>]+href=["'][^"']*theme\.css`)
	homeLinkRe    = regexp.MustCompile(`<a[^>]+href=["'](/|index\.html|\.\./index\.html)["']`)
	placeholderRe = regexp.MustCompile(`(?i)\bTODO\b|\bFIXME\b|rest of (the )?(code|file)|remaining (code|logic) here|/\* \.\.\. \*/`)
	bodyRuleRe    = regexp.MustCompile(`(?s)body\s*\{[^}]*\}`)
	paddingRe     = regexp.MustCompile(`padding[^:;]*:`)
)

var structuralRules = []structuralRule{
	{
		code:     types.IssueIncompleteDocument,
		severity: types.SeverityCritical,
		message:  "document is missing its root, head, body or closing tag",
		violated: func(_, lower string) bool {
			return !strings.Contains(lower, "<!doctype") ||
				!strings.Contains(lower, "<html") ||
				!strings.Contains(lower, "<head") ||
				!strings.Contains(lower, "<body") ||
				!strings.Contains(lower, "</html>")
		},
	},
	{
		code:     types.IssueMissingViewport,
		severity: types.SeverityCritical,
		message:  "no mobile viewport meta directive",
		violated: func(_, lower string) bool {
			return !viewportRe.MatchString(lower)
		},
	},
	{
		code:     types.IssueMissingThemeLink,
		severity: types.SeverityCritical,
		message:  "no stylesheet link to the shared theme",
		violated: func(_, lower string) bool {
			return !themeLinkRe.MatchString(lower)
		},
	},
	{
		code:     types.IssueMissingHomeLink,
		severity: types.SeverityWarning,
		message:  "no return-to-home navigation link",
		violated: func(_, lower string) bool {
			return !homeLinkRe.MatchString(lower)
		},
	},
	{
		code:     types.IssueMismatchedScriptBlocks,
		severity: types.SeverityCritical,
		message:  "unbalanced <script> blocks; generation was likely truncated",
		violated: func(_, lower string) bool {
			return strings.Count(lower, "<script") != strings.Count(lower, "</script>")
		},
	},
	{
		code:     types.IssueMarkdownArtifacts,
		severity: types.SeverityCritical,
		message:  "markdown code-fence markers leaked into the page",
		violated: func(markup, _ string) bool {
			return strings.Contains(markup, "```")
		},
	},
	{
		code:     types.IssueIncompleteCode,
		severity: types.SeverityWarning,
		message:  "placeholder markers left in the page",
		violated: func(markup, _ string) bool {
			return placeholderRe.MatchString(markup)
		},
	},
	{
		code:     types.IssuePaddingConflict,
		severity: types.SeverityWarning,
		message:  "conflicting padding declarations on the body rule",
		violated: func(_, lower string) bool {
			for _, rule := range bodyRuleRe.FindAllString(lower, -1) {
				if len(paddingRe.FindAllString(rule, -1)) > 1 {
					return true
				}
			}
			return false
		},
	},
}

// Validate runs both tiers plus the canvas checks and returns the findings.
func (v *Validator) Validate(markup string, p *types.Plan) Report {
	var report Report
	lower := strings.ToLower(markup)

	for _, rule := range structuralRules {
		if rule.violated(markup, lower) {
			report.add(types.Issue{Code: rule.code, Message: rule.message, Severity: rule.severity})
		}
	}

	v.checkPattern(markup, lower, p, &report)
	v.checkCanvas(markup, lower, &report)

	return report
}

func (r *Report) add(issue types.Issue) {
	if issue.Severity == types.SeverityCritical {
		r.Issues = append(r.Issues, issue)
	} else {
		r.Warnings = append(r.Warnings, issue)
	}
}

func (r *Report) addf(code types.IssueCode, severity types.Severity, format string, args ...interface{}) {
	r.add(types.Issue{Code: code, Message: fmt.Sprintf(format, args...), Severity: severity})
}

// HasCritical reports whether the attempt failed.
func (r *Report) HasCritical() bool {
	return len(r.Issues) > 0
}

// All returns issues then warnings in one deterministic slice.
func (r *Report) All() []types.Issue {
	out := make([]types.Issue, 0, len(r.Issues)+len(r.Warnings))
	out = append(out, r.Issues...)
	out = append(out, r.Warnings...)
	return out
}
