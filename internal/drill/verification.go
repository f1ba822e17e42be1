package drill

import (
	"context"
	"fmt"

	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/progression"
	"github.com/okian/shopfloor/internal/domain/types"
	"github.com/okian/shopfloor/pkg/logger"
)

// verifyOutcome checks a scored response.
func verifyOutcome(stepID string, out progression.Outcome) error {
	if out.Response.StepID != stepID {
		return fmt.Errorf("%w: response for step %q, want %q", ErrVerification, out.Response.StepID, stepID)
	}
	fb := out.Response.Feedback
	if fb == nil {
		return fmt.Errorf("%w: step %q has no feedback", ErrVerification, stepID)
	}
	if fb.ResponseID != out.Response.ID {
		return fmt.Errorf("%w: feedback %q belongs to %q", ErrVerification, fb.ID, fb.ResponseID)
	}
	for name, v := range map[string]int{
		"overall":        fb.OverallScore,
		"empathy":        fb.EmpathyScore,
		"clarity":        fb.ClarityScore,
		"responsiveness": fb.ResponsivenessScore,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s score %d out of range", ErrVerification, name, v)
		}
	}
	if out.Reply.Line == "" {
		return fmt.Errorf("%w: step %q has no customer reply", ErrVerification, stepID)
	}
	return nil
}

// verifyRecordProgress checks that completed steps never move backwards or
// pass the total. It returns the new high-water mark.
func verifyRecordProgress(rep types.ProgressReport, scenarioID string, last int) (int, error) {
	rec, ok := findRecord(rep, scenarioID)
	if !ok {
		return last, fmt.Errorf("%w: no progress record for %q", ErrVerification, scenarioID)
	}
	if rec.CompletedSteps < last {
		return last, fmt.Errorf("%w: completed steps went from %d to %d", ErrVerification, last, rec.CompletedSteps)
	}
	if rec.CompletedSteps > rec.TotalSteps {
		return last, fmt.Errorf("%w: completed steps %d exceed total %d", ErrVerification, rec.CompletedSteps, rec.TotalSteps)
	}
	return rec.CompletedSteps, nil
}

// verifyCompletion checks the finalized attempt against the progress report.
func verifyCompletion(ctx context.Context, scenarioID string, done progression.Completion, rep types.ProgressReport) error {
	logger.Get().Info(ctx, "verifying completion", logger.String("scenarioID", scenarioID))

	if !done.Record.Completed() {
		return fmt.Errorf("%w: record has %d/%d steps", ErrVerification, done.Record.CompletedSteps, done.Record.TotalSteps)
	}
	if done.Record.CompletionTime == nil {
		return fmt.Errorf("%w: completion time not set", ErrVerification)
	}
	if done.Score != nil && done.Record.BestScore != nil && *done.Score > *done.Record.BestScore {
		return fmt.Errorf("%w: attempt score %d above best %d", ErrVerification, *done.Score, *done.Record.BestScore)
	}

	rec, ok := findRecord(rep, scenarioID)
	if !ok {
		return fmt.Errorf("%w: no progress record for %q", ErrVerification, scenarioID)
	}
	if !rec.Completed() || rec.CompletionTime == nil {
		return fmt.Errorf("%w: stored record for %q is not complete", ErrVerification, scenarioID)
	}
	if rep.Summary.Completed < 1 {
		return fmt.Errorf("%w: summary counts no completed scenarios", ErrVerification)
	}
	if rep.Summary.CompletionRate < 0 || rep.Summary.CompletionRate > 100 {
		return fmt.Errorf("%w: completion rate %.2f out of range", ErrVerification, rep.Summary.CompletionRate)
	}

	logger.Get().Info(ctx, "verification passed",
		logger.Int("completedSteps", rec.CompletedSteps),
		logger.Int("totalSteps", rec.TotalSteps),
		logger.Int("completedScenarios", rep.Summary.Completed))
	return nil
}

func findRecord(rep types.ProgressReport, scenarioID string) (model.ProgressRecord, bool) {
	for _, r := range rep.Records {
		if r.ScenarioID == scenarioID {
			return r, true
		}
	}
	return model.ProgressRecord{}, false
}
