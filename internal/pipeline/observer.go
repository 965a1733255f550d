package pipeline

import (
	"pagewright/internal/logging"
	"pagewright/internal/types"
)

// Observer receives pipeline lifecycle events. Implementations must be
// fast; events fire synchronously on the run's goroutine.
type Observer interface {
	StageStarted(buildID string, stage types.Stage, attempt int)
	StageFinished(buildID string, stage types.Stage, status types.StageStatus, attempt int)
	AttemptScored(buildID string, attempt types.BuildAttempt)
}

// LoggingObserver is the default observer: every event goes to the
// pipeline log category.
type LoggingObserver struct{}

func (LoggingObserver) StageStarted(buildID string, stage types.Stage, attempt int) {
	if attempt > 0 {
		logging.Pipeline("[%s] %s started (attempt %d)", buildID, stage, attempt)
		return
	}
	logging.Pipeline("[%s] %s started", buildID, stage)
}

func (LoggingObserver) StageFinished(buildID string, stage types.Stage, status types.StageStatus, attempt int) {
	if attempt > 0 {
		logging.Pipeline("[%s] %s %s (attempt %d)", buildID, stage, status, attempt)
		return
	}
	logging.Pipeline("[%s] %s %s", buildID, stage, status)
}

func (LoggingObserver) AttemptScored(buildID string, attempt types.BuildAttempt) {
	logging.Pipeline("[%s] attempt %d scored %d (%d critical, %d warnings)",
		buildID, attempt.AttemptNumber, attempt.Score, len(attempt.Issues), len(attempt.Warnings))
}
