// Package pipeline drives the four-stage generation sequence: Architect
// plans, Builder generates, Tester validates and scores, Scribe documents.
// Retries are scoped strictly to the Build+Test cycle and are gated on
// critical-issue presence: a warning-only attempt is accepted immediately.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pagewright/internal/llm"
	"pagewright/internal/logging"
	"pagewright/internal/prompts"
	"pagewright/internal/publish"
	"pagewright/internal/types"
	"pagewright/internal/validate"
)

const defaultMaxAttempts = 3

// Internal role aliases so stage code does not import prompts everywhere.
const (
	roleArchitect = prompts.RoleArchitect
	roleBuilder   = prompts.RoleBuilder
	roleScribe    = prompts.RoleScribe
)

// Config assembles an Orchestrator's collaborators.
type Config struct {
	Client    llm.Client
	Prompts   *prompts.Loader
	Validator *validate.Validator
	// Semantic enables the optional model-based review tier. Nil (the
	// default) keeps validation fully deterministic.
	Semantic  *validate.SemanticReviewer
	Persister publish.Persister
	Observer  Observer
	// MaxAttempts bounds the Build+Test loop; zero means 3.
	MaxAttempts int
	// ArtifactsDir is where Builder output lands attempt by attempt.
	ArtifactsDir string
	// SlugInUse lets the Architect stage dodge registry collisions.
	// Nil disables the check.
	SlugInUse func(slug string) (bool, error)
}

// Orchestrator runs pipelines. Safe for concurrent use: per-run state
// lives on the stack, and collaborators manage their own locking.
type Orchestrator struct {
	client       llm.Client
	prompts      *prompts.Loader
	validator    *validate.Validator
	semantic     *validate.SemanticReviewer
	persister    publish.Persister
	observer     Observer
	maxAttempts  int
	artifactsDir string
	slugInUse    func(slug string) (bool, error)
}

// New creates an orchestrator, filling in defaults.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		client:       cfg.Client,
		prompts:      cfg.Prompts,
		validator:    cfg.Validator,
		semantic:     cfg.Semantic,
		persister:    cfg.Persister,
		observer:     cfg.Observer,
		maxAttempts:  cfg.MaxAttempts,
		artifactsDir: cfg.ArtifactsDir,
		slugInUse:    cfg.SlugInUse,
	}
	if o.validator == nil {
		o.validator = validate.New(validate.Options{})
	}
	if o.observer == nil {
		o.observer = LoggingObserver{}
	}
	if o.maxAttempts <= 0 {
		o.maxAttempts = defaultMaxAttempts
	}
	return o
}

func (o *Orchestrator) prompt(role prompts.Role) string {
	if o.prompts != nil {
		return o.prompts.Get(role)
	}
	return ""
}

// Run executes one full pipeline for a request.
func (o *Orchestrator) Run(ctx context.Context, request string) *types.BuildResult {
	return o.RunWithHint(ctx, request, "")
}

// RunWithHint is Run with an extra context block for the Architect prompt
// (the run manager injects a recent-issue summary here).
//
// Run never returns an error: every reachable failure is a named outcome
// on the BuildResult.
func (o *Orchestrator) RunWithHint(ctx context.Context, request, hint string) *types.BuildResult {
	result := &types.BuildResult{
		BuildID:       uuid.NewString(),
		Timestamp:     time.Now(),
		RequestText:   request,
		StageStatuses: make(map[types.Stage]types.StageStatus),
	}
	logging.Pipeline("[%s] run started: %q", result.BuildID, request)

	// ---- Architect ----
	o.observer.StageStarted(result.BuildID, types.StageArchitect, 0)
	p, err := o.architect(ctx, request, hint)
	if err != nil {
		// No retry for planning failures; the loop budget belongs to the
		// Builder. Nothing ran, nothing ships.
		result.StageStatuses[types.StageArchitect] = types.StageFailed
		o.observer.StageFinished(result.BuildID, types.StageArchitect, types.StageFailed, 0)
		for _, s := range []types.Stage{types.StageBuilder, types.StageTester, types.StageScribe, types.StagePersist} {
			result.StageStatuses[s] = types.StageSkipped
		}
		result.FinalOutcome = types.OutcomeAbandoned
		result.Error = err.Error()
		logging.Pipeline("[%s] abandoned: %v", result.BuildID, err)
		return result
	}
	result.Plan = p
	result.StageStatuses[types.StageArchitect] = types.StageSuccess
	o.observer.StageFinished(result.BuildID, types.StageArchitect, types.StageSuccess, 0)

	// ---- Build+Test loop ----
	files := make(map[string]string)
	var prior []types.Issue
	clean := false
	// Index into result.Attempts of the last attempt that produced markup.
	// A later hard failure must not lose it: its artifact is already on
	// disk and is what ships when retries run out.
	builtIdx := -1

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		o.observer.StageStarted(result.BuildID, types.StageBuilder, attempt)
		markup, script, err := o.build(ctx, p, attempt, prior)
		if err != nil {
			// A hard generation failure consumes the attempt like any
			// critical finding and feeds into the next prompt.
			o.observer.StageFinished(result.BuildID, types.StageBuilder, types.StageFailed, attempt)
			result.StageStatuses[types.StageBuilder] = types.StageFailed
			at := types.BuildAttempt{
				AttemptNumber: attempt,
				Issues:        synthesizeFailure(err),
			}
			at.Score = validate.Score(len(at.Issues), 0)
			result.Attempts = append(result.Attempts, at)
			o.observer.AttemptScored(result.BuildID, at)
			prior = at.Issues
			continue
		}
		result.StageStatuses[types.StageBuilder] = types.StageSuccess
		o.observer.StageFinished(result.BuildID, types.StageBuilder, types.StageSuccess, attempt)

		files = map[string]string{p.MarkupFile(): markup}
		if p.ScriptFile() != "" && script != "" {
			files[p.ScriptFile()] = script
		}
		if o.artifactsDir != "" {
			if err := o.writeArtifacts(p, files); err != nil {
				logging.Builder("artifact write failed (continuing): %v", err)
			}
		}

		o.observer.StageStarted(result.BuildID, types.StageTester, attempt)
		report := o.test(ctx, markup, p)
		at := types.BuildAttempt{
			AttemptNumber:   attempt,
			GeneratedMarkup: markup,
			GeneratedScript: script,
			Issues:          report.Issues,
			Warnings:        report.Warnings,
			Score:           validate.ScoreReport(report),
		}
		result.Attempts = append(result.Attempts, at)
		builtIdx = len(result.Attempts) - 1
		result.StageStatuses[types.StageTester] = types.StageSuccess
		o.observer.StageFinished(result.BuildID, types.StageTester, types.StageSuccess, attempt)
		o.observer.AttemptScored(result.BuildID, at)

		if !report.HasCritical() {
			clean = true
			break
		}
		prior = report.All()
	}

	if clean {
		result.FinalOutcome = types.OutcomeOK
	} else {
		// Retries exhausted; the last built attempt's output is carried
		// forward anyway and ships as degraded.
		result.FinalOutcome = types.OutcomeDegraded
	}

	if builtIdx < 0 {
		// Every attempt failed before producing markup. There is nothing
		// to document or publish.
		result.StageStatuses[types.StageScribe] = types.StageSkipped
		result.StageStatuses[types.StagePersist] = types.StageSkipped
		result.Error = "builder produced no content"
		logging.Pipeline("[%s] degraded with no content", result.BuildID)
		return result
	}
	// Ship the last attempt that built something, not necessarily the
	// final one: files still holds its artifacts.
	ship := &result.Attempts[builtIdx]

	// ---- Scribe ----
	o.observer.StageStarted(result.BuildID, types.StageScribe, 0)
	doc := o.scribe(ctx, p, ship, ship.Score)
	result.Documentation = doc
	scribeStatus := types.StageSuccess
	if doc.Fallback {
		scribeStatus = types.StageFailed
	}
	result.StageStatuses[types.StageScribe] = scribeStatus
	o.observer.StageFinished(result.BuildID, types.StageScribe, scribeStatus, 0)

	// ---- Persist ----
	o.observer.StageStarted(result.BuildID, types.StagePersist, 0)
	if o.persister == nil {
		result.StageStatuses[types.StagePersist] = types.StageSkipped
		o.observer.StageFinished(result.BuildID, types.StagePersist, types.StageSkipped, 0)
		return result
	}
	if err := o.persister.Persist(ctx, p, files, doc, ship.Score); err != nil {
		// Completed, not persisted. Retry belongs to the persistence
		// collaborator, not this loop.
		result.Persisted = false
		result.PersistError = err.Error()
		result.StageStatuses[types.StagePersist] = types.StageFailed
		o.observer.StageFinished(result.BuildID, types.StagePersist, types.StageFailed, 0)
		logging.Pipeline("[%s] completed, not persisted: %v", result.BuildID, err)
		return result
	}
	result.Persisted = true
	result.StageStatuses[types.StagePersist] = types.StageSuccess
	o.observer.StageFinished(result.BuildID, types.StagePersist, types.StageSuccess, 0)

	logging.Pipeline("[%s] run finished: outcome=%s attempts=%d score=%d",
		result.BuildID, result.FinalOutcome, len(result.Attempts), ship.Score)
	return result
}
