package drill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/shopfloor/internal/domain/progression"
	"github.com/okian/shopfloor/pkg/logger"
)

// Run signs in, plays the configured scenario through the requested number
// of rounds and verifies the progress the service reports after each step.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting training drill",
		logger.String("baseURL", config.BaseURL),
		logger.String("email", config.Email),
		logger.String("scenarioID", config.ScenarioID),
		logger.Int("rounds", config.rounds()),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	logger.Get().Info(ctx, "checking service health")
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Sign in
	login, err := client.Login(ctx, config.Email, config.Password)
	if err != nil {
		return stats, fmt.Errorf("login failed: %w", err)
	}
	logger.Get().Info(ctx, "signed in",
		logger.String("employeeID", login.Employee.ID),
		logger.String("name", login.Employee.Name))

	// Step 3: Play the rounds
	for round := 1; round <= config.rounds(); round++ {
		if err := runRound(ctx, client, config, stats, round); err != nil {
			return stats, fmt.Errorf("round %d failed: %w", round, err)
		}
		stats.Rounds++
	}

	// Step 4: Sign out
	if err := client.Logout(ctx); err != nil {
		logger.Get().Warn(ctx, "failed to sign out", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "drill completed successfully")
	return stats, nil
}

func runRound(ctx context.Context, client *HTTPClient, config *Config, stats *Stats, round int) error {
	view, err := client.Training(ctx)
	if err != nil {
		return fmt.Errorf("get training: %w", err)
	}
	if view.Scenario != nil && view.Scenario.ID != config.ScenarioID && view.State != progression.StateComplete {
		return fmt.Errorf("scenario %q is already active", view.Scenario.ID)
	}
	if view.Scenario != nil && view.Scenario.ID == config.ScenarioID {
		if view, err = client.Reset(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	} else if view, err = client.Start(ctx, config.ScenarioID); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	logger.Get().Info(ctx, "scenario started",
		logger.Int("round", round),
		logger.Int("attempt", view.Attempt),
		logger.Int("steps", len(view.Steps)))

	high := 0
	for i := 0; view.State == progression.StateInStep; i++ {
		step := view.CurrentStep
		if step == nil {
			return fmt.Errorf("%w: in step without a current step", ErrVerification)
		}

		out, err := respond(ctx, client, config.answer(i), stats)
		if err != nil {
			return fmt.Errorf("respond to %q: %w", step.ID, err)
		}
		if err := verifyOutcome(step.ID, out); err != nil {
			return err
		}
		stats.StepsAnswered++

		if i == 0 {
			// A second answer to the same step must be refused.
			if _, err := client.Respond(ctx, config.answer(i)); statusOf(err) != StatusConflict {
				return fmt.Errorf("%w: repeated answer was not refused: %v", ErrVerification, err)
			}
			stats.DuplicateReject++
		}

		rep, err := client.Progress(ctx)
		if err != nil {
			return fmt.Errorf("get progress: %w", err)
		}
		if high, err = verifyRecordProgress(rep, config.ScenarioID, high); err != nil {
			return err
		}

		if config.Verbose {
			logger.Get().Info(ctx, "step answered",
				logger.String("stepID", step.ID),
				logger.Int("overall", out.Response.Feedback.OverallScore),
				logger.String("reply", string(out.Reply.Branch)),
				logger.Int("completedSteps", high))
		}

		if view, err = client.Advance(ctx); err != nil {
			return fmt.Errorf("advance: %w", err)
		}
	}

	if view.State != progression.StateComplete {
		return fmt.Errorf("%w: ended in state %s", ErrVerification, view.State)
	}

	done, err := client.Complete(ctx)
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	rep, err := client.Progress(ctx)
	if err != nil {
		return fmt.Errorf("get progress: %w", err)
	}
	if err := verifyCompletion(ctx, config.ScenarioID, done, rep); err != nil {
		return err
	}

	stats.LastScore = done.Score
	stats.LastSummary = done.Summary
	return nil
}

// respond retries while the feedback provider is unavailable.
func respond(ctx context.Context, client *HTTPClient, text string, stats *Stats) (progression.Outcome, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxRespondAttempts; attempt++ {
		out, err := client.Respond(ctx, text)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if statusOf(err) != StatusServiceUnavailable || attempt == MaxRespondAttempts {
			return progression.Outcome{}, err
		}
		stats.Retries++
		logger.Get().Warn(ctx, "feedback unavailable, retrying",
			logger.Int("attempt", attempt), logger.Error(err))
		select {
		case <-ctx.Done():
			return progression.Outcome{}, errors.Join(lastErr, ctx.Err())
		case <-time.After(RetryDelay):
		}
	}
	return progression.Outcome{}, lastErr
}

// displayFinalStats prints the final drill statistics.
func displayFinalStats(stats *Stats) {
	fields := []logger.Field{
		logger.Int("rounds", stats.Rounds),
		logger.Int("stepsAnswered", stats.StepsAnswered),
		logger.Int("duplicatesRefused", stats.DuplicateReject),
		logger.Int("retries", stats.Retries),
		logger.Int("overall", stats.LastSummary.OverallScore),
		logger.String("performance", stats.LastSummary.Performance),
		logger.Duration("duration", stats.Duration),
	}
	if stats.LastScore != nil {
		fields = append(fields, logger.Int("score", *stats.LastScore))
	}
	logger.Get().Info(context.Background(), "final statistics", fields...)
}
