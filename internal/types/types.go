// Package types defines the shared data model for the pagewright pipeline:
// plans, validation issues, build attempts and the terminal build result.
package types

import (
	"fmt"
	"time"
)

// =============================================================================
// PLAN - THE ARCHITECT'S OUTPUT
// =============================================================================

// ContentType classifies what kind of page is being built.
type ContentType string

const (
	ContentGame          ContentType = "game"
	ContentLetter        ContentType = "letter"
	ContentRecipe        ContentType = "recipe"
	ContentInfographic   ContentType = "infographic"
	ContentStory         ContentType = "story"
	ContentLog           ContentType = "log"
	ContentParody        ContentType = "parody"
	ContentUtility       ContentType = "utility"
	ContentVisualization ContentType = "visualization"
)

// ValidContentTypes is the closed set of accepted content classifications.
var ValidContentTypes = map[ContentType]bool{
	ContentGame:          true,
	ContentLetter:        true,
	ContentRecipe:        true,
	ContentInfographic:   true,
	ContentStory:         true,
	ContentLog:           true,
	ContentParody:        true,
	ContentUtility:       true,
	ContentVisualization: true,
}

// InteractionPattern classifies how the user interacts with the page.
// The policy package maps each pattern to required/forbidden page features.
type InteractionPattern string

const (
	PatternDirectionalMovement InteractionPattern = "directional-movement"
	PatternDirectTouch         InteractionPattern = "direct-touch"
	PatternHybridControls      InteractionPattern = "hybrid-controls"
	PatternFormBased           InteractionPattern = "form-based"
	PatternPassiveScroll       InteractionPattern = "passive-scroll"
)

// ValidInteractionPatterns is the closed set of accepted patterns.
var ValidInteractionPatterns = map[InteractionPattern]bool{
	PatternDirectionalMovement: true,
	PatternDirectTouch:         true,
	PatternHybridControls:      true,
	PatternFormBased:           true,
	PatternPassiveScroll:       true,
}

// PageMetadata describes the page for the project registry and landing index.
type PageMetadata struct {
	Title       string `json:"title" yaml:"title"`
	Icon        string `json:"icon" yaml:"icon"`
	Description string `json:"description" yaml:"description"`
	Collection  string `json:"collection" yaml:"collection"`
}

// Plan is the canonical, normalized output of the Architect stage.
// It is created once per pipeline run and never mutated afterwards;
// Builder, Tester and Scribe only read it.
type Plan struct {
	Slug               string             `json:"slug"`
	ContentType        ContentType        `json:"contentType"`
	InteractionPattern InteractionPattern `json:"interactionPattern"`
	// Files lists relative output paths. The first entry is always the
	// markup file; an optional second entry is a companion script file.
	Files    []string     `json:"files"`
	Metadata PageMetadata `json:"metadata"`
	Features []string     `json:"features,omitempty"`
}

// MarkupFile returns the primary markup output path.
func (p *Plan) MarkupFile() string {
	if len(p.Files) == 0 {
		return ""
	}
	return p.Files[0]
}

// ScriptFile returns the companion script path, or "" when the plan has none.
func (p *Plan) ScriptFile() string {
	if len(p.Files) < 2 {
		return ""
	}
	return p.Files[1]
}

// =============================================================================
// VALIDATION ISSUES
// =============================================================================

// Severity indicates how serious a validation finding is.
// Critical issues fail the attempt; warnings reduce the score only.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// IssueCode is a stable symbolic identifier for a validation finding.
type IssueCode string

// The fixed issue taxonomy. Codes are stable across releases: they are
// persisted in the audit store and fed back verbatim into Builder prompts.
const (
	IssueIncompleteDocument     IssueCode = "INCOMPLETE_DOCUMENT"
	IssueMissingViewport        IssueCode = "MISSING_VIEWPORT"
	IssueMissingThemeLink       IssueCode = "MISSING_THEME_LINK"
	IssueMissingHomeLink        IssueCode = "MISSING_HOME_LINK"
	IssueMismatchedScriptBlocks IssueCode = "MISMATCHED_SCRIPT_BLOCKS"
	IssueMarkdownArtifacts      IssueCode = "MARKDOWN_ARTIFACTS"
	IssueIncompleteCode         IssueCode = "INCOMPLETE_CODE"
	IssuePaddingConflict        IssueCode = "PADDING_CONFLICT"
	IssueMissingDirectional     IssueCode = "MISSING_DIRECTIONAL_CONTROLS"
	IssueUnwantedDirectional    IssueCode = "UNWANTED_DIRECTIONAL_CONTROLS"
	IssueMissingTouchHandlers   IssueCode = "MISSING_TOUCH_HANDLERS"
	IssueMissingActionControl   IssueCode = "MISSING_ACTION_CONTROL"
	IssueMissingFormElements    IssueCode = "MISSING_FORM_ELEMENTS"
	IssueUnwantedGameControls   IssueCode = "UNWANTED_GAME_CONTROLS"
	IssueCanvasTooLarge          IssueCode = "CANVAS_TOO_LARGE"
	IssueCanvasNotResponsive     IssueCode = "CANVAS_NOT_RESPONSIVE"
	IssueNoResponsiveBreakpoints IssueCode = "NO_RESPONSIVE_BREAKPOINTS"
	// IssueSemanticMismatch carries findings from the optional model-based
	// review tier; the finding's message holds the specifics.
	IssueSemanticMismatch IssueCode = "SEMANTIC_MISMATCH"
)

// Issue is a single validation finding.
type Issue struct {
	Code     IssueCode `json:"code"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
}

// =============================================================================
// BUILD ATTEMPTS AND RESULTS
// =============================================================================

// BuildAttempt records one Builder+Tester cycle. Attempts are independent:
// a later attempt's markup is a fresh generation conditioned on prior issues,
// never a diff of an earlier one.
type BuildAttempt struct {
	AttemptNumber   int     `json:"attemptNumber"`
	GeneratedMarkup string  `json:"-"`
	GeneratedScript string  `json:"-"`
	Issues          []Issue `json:"issues"`
	Warnings        []Issue `json:"warnings"`
	Score           int     `json:"score"`
}

// Outcome is the terminal classification of a pipeline run.
type Outcome string

const (
	// OutcomeOK means the last attempt had zero critical issues.
	OutcomeOK Outcome = "ok"
	// OutcomeDegraded means retries were exhausted but content was still
	// carried forward and persisted.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeAbandoned means the Architect stage failed and no
	// Builder/Tester/Scribe stage ran.
	OutcomeAbandoned Outcome = "abandoned"
)

// Stage identifies a pipeline stage.
type Stage int

const (
	StageArchitect Stage = iota
	StageBuilder
	StageTester
	StageScribe
	StagePersist
)

func (s Stage) String() string {
	switch s {
	case StageArchitect:
		return "architect"
	case StageBuilder:
		return "builder"
	case StageTester:
		return "tester"
	case StageScribe:
		return "scribe"
	case StagePersist:
		return "persist"
	default:
		return "unknown"
	}
}

// Stages lists all pipeline stages in execution order.
var Stages = []Stage{StageArchitect, StageBuilder, StageTester, StageScribe, StagePersist}

// MarshalText lets a Stage serve as a JSON map key in persisted records.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for _, st := range Stages {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}

// StageStatus records how a stage ended.
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageFailed  StageStatus = "failed"
	StageSkipped StageStatus = "skipped"
)

// Documentation is the Scribe's output: metadata reconciled with what was
// actually built, plus short human-readable release text.
type Documentation struct {
	Metadata    PageMetadata `json:"metadata"`
	ReleaseText string       `json:"releaseText"`
	// Fallback is true when the Scribe stage failed and the plan's
	// original metadata was used instead.
	Fallback bool `json:"fallback,omitempty"`
}

// BuildResult is the terminal audit record of one pipeline run.
// Created once per request; never mutated after pipeline completion.
type BuildResult struct {
	BuildID       string                `json:"buildId"`
	Timestamp     time.Time             `json:"timestamp"`
	RequestText   string                `json:"requestText"`
	Plan          *Plan                 `json:"plan,omitempty"`
	Attempts      []BuildAttempt        `json:"attempts"`
	FinalOutcome  Outcome               `json:"finalOutcome"`
	Documentation *Documentation        `json:"documentation,omitempty"`
	// StageStatuses records how each stage ended; part of the durable
	// audit record so a skipped Scribe/Persist is recoverable from history.
	StageStatuses map[Stage]StageStatus `json:"stageStatuses"`
	// Persisted is false when the run completed but the persist stage
	// failed ("completed, not persisted"). Persistence is not retried
	// inline; that belongs to the persistence collaborator.
	Persisted    bool   `json:"persisted"`
	PersistError string `json:"persistError,omitempty"`
	// Error carries the stage failure that abandoned the run, if any.
	Error string `json:"error,omitempty"`
}

// FinalAttempt returns the last build attempt, or nil when none ran.
func (r *BuildResult) FinalAttempt() *BuildAttempt {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}

// CriticalCount counts critical issues across the final attempt.
func (r *BuildResult) CriticalCount() int {
	a := r.FinalAttempt()
	if a == nil {
		return 0
	}
	return len(a.Issues)
}
