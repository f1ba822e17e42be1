package progression_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/shopfloor/internal/adapters/repository"
	"github.com/okian/shopfloor/internal/domain/catalog"
	"github.com/okian/shopfloor/internal/domain/feedback"
	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/progression"
	"github.com/okian/shopfloor/internal/domain/reply"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	strongAnswer = "I'm so sorry about the delay, I understand how frustrating this is. I will personally check the tracking for you right away, and I can offer a discount or a replacement so you have it today. Thank you for your patience."
	weakAnswer   = "Sorry."
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// stubProvider answers with fixed values, optionally failing or blocking.
type stubProvider struct {
	mu      sync.Mutex
	calls   int
	fail    int // number of Evaluate calls that fail before succeeding
	overall []int
	block   chan struct{}
	entered chan struct{}
}

func (p *stubProvider) CustomerReply(context.Context, model.ScenarioStep, string) (reply.Reply, error) {
	return reply.Reply{Branch: reply.BranchDefault, Line: reply.LineDefault}, nil
}

func (p *stubProvider) Evaluate(ctx context.Context, step model.ScenarioStep, _ string) (model.Feedback, error) {
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return model.Feedback{}, feedback.ErrUnavailable
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail > 0 {
		p.fail--
		return model.Feedback{}, errors.New("upstream down")
	}
	overall := 70
	if len(p.overall) > 0 {
		overall = p.overall[0]
		p.overall = p.overall[1:]
	}
	return model.Feedback{
		ID:                  "fb-" + step.ID,
		OverallScore:        overall,
		EmpathyScore:        overall,
		ClarityScore:        overall,
		ResponsivenessScore: overall,
		Strengths:           []string{"ok"},
	}, nil
}

// alwaysSeen is a guard that reports every key as already recorded.
type alwaysSeen struct{}

func (alwaysSeen) SeenAndRecord(context.Context, string) bool { return true }
func (alwaysSeen) Unrecord(context.Context, string)           {}
func (alwaysSeen) Size() int64                                { return 0 }

func newSession(p feedback.Provider, opts ...progression.Option) (*progression.Session, *repository.MemoryStore) {
	store, err := repository.NewMemoryStore()
	So(err, ShouldBeNil)
	opts = append([]progression.Option{progression.WithClock(func() time.Time { return fixedNow })}, opts...)
	s, err := progression.NewSession("1", catalog.Default(), store, p, opts...)
	So(err, ShouldBeNil)
	return s, store
}

func TestSession_RoundTrip(t *testing.T) {
	Convey("Given a session with the local provider", t, func() {
		ctx := context.Background()
		provider := feedback.NewLocalProvider(feedback.WithLatencyRange(0, 0))
		s, store := newSession(provider)

		So(s.View().State, ShouldEqual, progression.StateIdle)

		Convey("When the employee starts a scenario", func() {
			v, err := s.Start(ctx, "cs-1")
			So(err, ShouldBeNil)

			Convey("Then the first step is current and a progress record exists", func() {
				So(v.State, ShouldEqual, progression.StateInStep)
				So(v.CurrentStep.ID, ShouldEqual, "cs-1-step1")
				So(v.Steps, ShouldHaveLength, 3)
				rec, err := store.ProgressFor(ctx, "1", "cs-1")
				So(err, ShouldBeNil)
				So(rec.TotalSteps, ShouldEqual, 3)
				So(rec.CompletedSteps, ShouldEqual, 0)
			})

			Convey("And every step is answered and the attempt completed", func() {
				visited := []string{}
				lastCompleted := 0
				for i := 0; i < 3; i++ {
					cur := s.View()
					So(cur.State, ShouldEqual, progression.StateInStep)
					visited = append(visited, cur.CurrentStep.ID)

					out, err := s.Submit(ctx, strongAnswer)
					So(err, ShouldBeNil)
					So(out.Response.Feedback, ShouldNotBeNil)
					So(out.Response.Feedback.ResponseID, ShouldEqual, out.Response.ID)
					So(out.Response.StepID, ShouldEqual, cur.CurrentStep.ID)

					after := s.View()
					So(after.State, ShouldEqual, progression.StateAwaitingContinue)
					So(after.Feedback, ShouldNotBeNil)
					So(after.CustomerReply, ShouldNotBeNil)

					rec, _ := store.ProgressFor(ctx, "1", "cs-1")
					So(rec.CompletedSteps, ShouldBeGreaterThanOrEqualTo, lastCompleted)
					So(rec.CompletedSteps, ShouldBeLessThanOrEqualTo, rec.TotalSteps)
					lastCompleted = rec.CompletedSteps
					So(store.Status(ctx, "1", "cs-1").Status, ShouldEqual, model.StatusInProgress)

					adv, err := s.Advance(ctx)
					So(err, ShouldBeNil)
					So(adv.Feedback, ShouldBeNil)
					So(adv.CustomerReply, ShouldBeNil)
				}

				So(visited, ShouldResemble, []string{"cs-1-step1", "cs-1-step2", "cs-1-step3"})
				So(s.View().State, ShouldEqual, progression.StateComplete)

				done, err := s.Complete(ctx)
				So(err, ShouldBeNil)
				So(done.Record.CompletedSteps, ShouldEqual, done.Record.TotalSteps)
				So(done.Record.CompletionTime, ShouldNotBeNil)
				So(*done.Record.CompletionTime, ShouldEqual, fixedNow)
				So(done.Record.AverageScore, ShouldNotBeNil)
				So(done.Score, ShouldNotBeNil)
				So(*done.Score, ShouldBeLessThanOrEqualTo, *done.Record.BestScore)
				So(done.Summary.Responses, ShouldEqual, 3)

				st := store.Status(ctx, "1", "cs-1")
				So(st.Status, ShouldEqual, model.StatusCompleted)
				So(*st.Score, ShouldEqual, *done.Score)
				So(store.Responses(ctx, "1", "cs-1"), ShouldHaveLength, 3)

				idle := s.View()
				So(idle.State, ShouldEqual, progression.StateIdle)
				So(idle.Scenario, ShouldBeNil)
				So(idle.CurrentStep, ShouldBeNil)
			})
		})
	})
}

func TestSession_InvalidTransitions(t *testing.T) {
	Convey("Given an idle session", t, func() {
		ctx := context.Background()
		s, _ := newSession(&stubProvider{})

		Convey("When submitting without a scenario", func() {
			_, err := s.Submit(ctx, "hello there, how can I help?")

			Convey("Then no active scenario is reported", func() {
				So(errors.Is(err, progression.ErrNoActiveScenario), ShouldBeTrue)
				So(errors.Is(err, progression.ErrInvalidTransition), ShouldBeTrue)
			})
		})

		Convey("When advancing, resetting or completing", func() {
			_, advErr := s.Advance(ctx)
			_, resetErr := s.Reset(ctx)
			_, doneErr := s.Complete(ctx)

			Convey("Then each is rejected", func() {
				So(errors.Is(advErr, progression.ErrInvalidTransition), ShouldBeTrue)
				So(errors.Is(resetErr, progression.ErrNoActiveScenario), ShouldBeTrue)
				So(errors.Is(doneErr, progression.ErrNoActiveScenario), ShouldBeTrue)
			})
		})

		Convey("When starting an unknown scenario", func() {
			_, err := s.Start(ctx, "missing")

			Convey("Then the session stays idle", func() {
				So(errors.Is(err, progression.ErrScenarioNotFound), ShouldBeTrue)
				So(s.View().State, ShouldEqual, progression.StateIdle)
			})
		})

		Convey("When a scenario is in progress", func() {
			_, err := s.Start(ctx, "sales-1")
			So(err, ShouldBeNil)

			Convey("Then starting another is rejected", func() {
				_, err := s.Start(ctx, "cs-1")
				So(errors.Is(err, progression.ErrInvalidTransition), ShouldBeTrue)
				So(s.View().Scenario.ID, ShouldEqual, "sales-1")
			})

			Convey("Then advancing before answering is rejected", func() {
				_, err := s.Advance(ctx)
				So(errors.Is(err, progression.ErrInvalidTransition), ShouldBeTrue)
			})

			Convey("Then completing before the last step is rejected", func() {
				_, err := s.Complete(ctx)
				So(errors.Is(err, progression.ErrInvalidTransition), ShouldBeTrue)
			})

			Convey("Then answering the same step twice is rejected", func() {
				_, err := s.Submit(ctx, weakAnswer)
				So(err, ShouldBeNil)
				_, err = s.Submit(ctx, weakAnswer)
				So(errors.Is(err, progression.ErrAlreadySubmitted), ShouldBeTrue)
				So(errors.Is(err, progression.ErrInvalidTransition), ShouldBeTrue)
			})
		})
	})

	Convey("Given a catalog with a scenario without steps", t, func() {
		ctx := context.Background()
		cat, err := catalog.New(catalog.WithScenarios([]model.TrainingScenario{
			{ID: "empty", Title: "Empty", Category: "cs", Difficulty: model.DifficultyBeginner, Status: model.StatusNotStarted},
		}, nil))
		So(err, ShouldBeNil)
		store, err := repository.NewMemoryStore()
		So(err, ShouldBeNil)
		s, err := progression.NewSession("1", cat, store, &stubProvider{})
		So(err, ShouldBeNil)

		Convey("When starting it", func() {
			_, err := s.Start(ctx, "empty")

			Convey("Then the start is rejected and nothing is recorded", func() {
				So(errors.Is(err, progression.ErrNoSteps), ShouldBeTrue)
				So(s.View().State, ShouldEqual, progression.StateIdle)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})
	})

	Convey("Given missing collaborators", t, func() {
		store, _ := repository.NewMemoryStore()

		Convey("Then a session cannot be built", func() {
			_, err := progression.NewSession("", catalog.Default(), store, &stubProvider{})
			So(errors.Is(err, progression.ErrNoActiveEmployee), ShouldBeTrue)
			_, err = progression.NewSession("1", nil, store, &stubProvider{})
			So(errors.Is(err, progression.ErrMissingDependency), ShouldBeTrue)
		})
	})
}

func TestSession_ProviderFailures(t *testing.T) {
	Convey("Given a provider that fails once", t, func() {
		ctx := context.Background()
		p := &stubProvider{fail: 1}
		s, store := newSession(p)
		_, err := s.Start(ctx, "cs-1")
		So(err, ShouldBeNil)

		Convey("When the first submission fails", func() {
			_, err := s.Submit(ctx, strongAnswer)

			Convey("Then the error is recoverable and the step can be retried", func() {
				So(errors.Is(err, progression.ErrProviderUnavailable), ShouldBeTrue)
				v := s.View()
				So(v.State, ShouldEqual, progression.StateInStep)
				So(v.Processing, ShouldBeFalse)
				So(v.Responses, ShouldBeEmpty)
				So(store.Responses(ctx, "1", "cs-1"), ShouldBeEmpty)

				out, err := s.Submit(ctx, strongAnswer)
				So(err, ShouldBeNil)
				So(out.Response.StepID, ShouldEqual, "cs-1-step1")
				So(s.View().State, ShouldEqual, progression.StateAwaitingContinue)
			})
		})
	})

	Convey("Given a provider slower than the submission timeout", t, func() {
		ctx := context.Background()
		p := &stubProvider{block: make(chan struct{})}
		s, _ := newSession(p, progression.WithTimeout(20*time.Millisecond))
		_, err := s.Start(ctx, "cs-1")
		So(err, ShouldBeNil)

		Convey("When submitting", func() {
			_, err := s.Submit(ctx, strongAnswer)

			Convey("Then the provider is reported unavailable", func() {
				So(errors.Is(err, progression.ErrProviderUnavailable), ShouldBeTrue)
				So(s.View().State, ShouldEqual, progression.StateInStep)
			})
		})
	})

	Convey("Given a caller whose context is already cancelled", t, func() {
		p := feedback.NewLocalProvider(feedback.WithLatencyRange(5*time.Millisecond, 10*time.Millisecond))
		s, _ := newSession(p)
		_, err := s.Start(context.Background(), "cs-1")
		So(err, ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When submitting", func() {
			_, err := s.Submit(ctx, strongAnswer)

			Convey("Then the submission still runs to completion", func() {
				So(err, ShouldBeNil)
				So(s.View().State, ShouldEqual, progression.StateAwaitingContinue)
			})
		})
	})

	Convey("Given a guard that has already seen the submission", t, func() {
		ctx := context.Background()
		p := &stubProvider{}
		s, _ := newSession(p, progression.WithDeduper(alwaysSeen{}))
		_, err := s.Start(ctx, "cs-1")
		So(err, ShouldBeNil)

		Convey("When submitting", func() {
			_, err := s.Submit(ctx, strongAnswer)

			Convey("Then the provider is never called", func() {
				So(errors.Is(err, progression.ErrAlreadySubmitted), ShouldBeTrue)
				So(p.calls, ShouldEqual, 0)
				So(s.View().State, ShouldEqual, progression.StateInStep)
			})
		})
	})
}

// flakyStatusStore fails MarkInProgress the first time it is called.
type flakyStatusStore struct {
	*repository.MemoryStore
	failed bool
}

func (f *flakyStatusStore) MarkInProgress(ctx context.Context, employeeID, scenarioID string) error {
	if !f.failed {
		f.failed = true
		return errors.New("disk full")
	}
	return f.MemoryStore.MarkInProgress(ctx, employeeID, scenarioID)
}

func TestSession_StoreFailures(t *testing.T) {
	Convey("Given a store whose status write fails once", t, func() {
		ctx := context.Background()
		mem, err := repository.NewMemoryStore()
		So(err, ShouldBeNil)
		store := &flakyStatusStore{MemoryStore: mem}
		s, err := progression.NewSession("1", catalog.Default(), store, &stubProvider{},
			progression.WithClock(func() time.Time { return fixedNow }))
		So(err, ShouldBeNil)
		_, err = s.Start(ctx, "cs-1")
		So(err, ShouldBeNil)

		Convey("When the first submission fails and is retried", func() {
			_, firstErr := s.Submit(ctx, "first try, I can help you with that right away")
			firstState := s.View().State
			out, retryErr := s.Submit(ctx, "second try, I can help you with that right away")

			Convey("Then only the retried response is recorded for the step", func() {
				So(firstErr, ShouldNotBeNil)
				So(firstState, ShouldEqual, progression.StateInStep)
				So(retryErr, ShouldBeNil)
				history := mem.Responses(ctx, "1", "cs-1")
				So(history, ShouldHaveLength, 1)
				So(history[0].ID, ShouldEqual, out.Response.ID)
				So(history[0].StepID, ShouldEqual, "cs-1-step1")
			})
		})
	})
}

func TestSession_InFlightGuard(t *testing.T) {
	Convey("Given a submission waiting on the provider", t, func() {
		ctx := context.Background()
		p := &stubProvider{block: make(chan struct{}), entered: make(chan struct{}, 1)}
		s, _ := newSession(p)
		_, err := s.Start(ctx, "cs-1")
		So(err, ShouldBeNil)

		done := make(chan error, 1)
		go func() {
			_, err := s.Submit(ctx, strongAnswer)
			done <- err
		}()
		<-p.entered

		Convey("When other transitions arrive meanwhile", func() {
			So(s.View().Processing, ShouldBeTrue)
			_, submitErr := s.Submit(ctx, strongAnswer)
			_, resetErr := s.Reset(ctx)
			_, startErr := s.Start(ctx, "cs-2")
			close(p.block)
			firstErr := <-done

			Convey("Then they are rejected and the first submission wins", func() {
				So(errors.Is(submitErr, progression.ErrSubmissionInFlight), ShouldBeTrue)
				So(errors.Is(resetErr, progression.ErrSubmissionInFlight), ShouldBeTrue)
				So(errors.Is(startErr, progression.ErrSubmissionInFlight), ShouldBeTrue)
				So(firstErr, ShouldBeNil)
				So(p.calls, ShouldEqual, 1)
				v := s.View()
				So(v.State, ShouldEqual, progression.StateAwaitingContinue)
				So(v.Processing, ShouldBeFalse)
				So(v.Responses, ShouldHaveLength, 1)
			})
		})
	})
}

func TestSession_Reset(t *testing.T) {
	Convey("Given a session in the middle of a scenario", t, func() {
		ctx := context.Background()
		s, store := newSession(&stubProvider{})
		_, err := s.Start(ctx, "cs-2")
		So(err, ShouldBeNil)
		_, err = s.Submit(ctx, strongAnswer)
		So(err, ShouldBeNil)
		_, err = s.Advance(ctx)
		So(err, ShouldBeNil)
		So(s.View().CurrentStep.ID, ShouldEqual, "cs-2-step2")

		Convey("When it is reset", func() {
			v, err := s.Reset(ctx)

			Convey("Then it is back at the first step with a clean attempt", func() {
				So(err, ShouldBeNil)
				So(v.State, ShouldEqual, progression.StateInStep)
				So(v.CurrentStep.ID, ShouldEqual, "cs-2-step1")
				So(v.Attempt, ShouldEqual, 2)
				So(v.Responses, ShouldBeEmpty)
				So(v.Feedback, ShouldBeNil)
			})

			Convey("Then progress already made is kept", func() {
				rec, _ := store.ProgressFor(ctx, "1", "cs-2")
				So(rec.CompletedSteps, ShouldEqual, 1)
			})

			Convey("Then the first step can be answered again", func() {
				_, err := s.Submit(ctx, strongAnswer)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestSession_CompletionScores(t *testing.T) {
	Convey("Given an attempt with known overall scores", t, func() {
		ctx := context.Background()
		p := &stubProvider{overall: []int{60, 0, 75}}
		s, store := newSession(p)
		_, err := s.Start(ctx, "conflict-1")
		So(err, ShouldBeNil)
		for i := 0; i < 3; i++ {
			_, err = s.Submit(ctx, strongAnswer)
			So(err, ShouldBeNil)
			_, err = s.Advance(ctx)
			So(err, ShouldBeNil)
		}

		Convey("When the attempt is completed", func() {
			done, err := s.Complete(ctx)

			Convey("Then average and best use only positive scores", func() {
				So(err, ShouldBeNil)
				So(*done.Record.AverageScore, ShouldEqual, 67.5)
				So(*done.Record.BestScore, ShouldEqual, 75)
				So(*done.Score, ShouldEqual, 68)
				So(*store.Status(ctx, "1", "conflict-1").Score, ShouldEqual, 68)
				So(done.Summary.OverallScore, ShouldEqual, 45)
			})

			Convey("Then the scenario can be started again", func() {
				v, err := s.Start(ctx, "conflict-1")
				So(err, ShouldBeNil)
				So(v.State, ShouldEqual, progression.StateInStep)
				So(store.Status(ctx, "1", "conflict-1").Status, ShouldEqual, model.StatusCompleted)
			})
		})
	})
}

func TestState_String(t *testing.T) {
	Convey("Given the session states", t, func() {
		So(progression.StateIdle.String(), ShouldEqual, "idle")
		So(progression.StateInStep.String(), ShouldEqual, "in_step")
		So(progression.StateAwaitingContinue.String(), ShouldEqual, "awaiting_continue")
		So(progression.StateComplete.String(), ShouldEqual, "complete")
		So(progression.State(9).String(), ShouldEqual, "state(9)")
		b, err := progression.StateComplete.MarshalText()
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, "complete")

		var st progression.State
		So(st.UnmarshalText([]byte("awaiting_continue")), ShouldBeNil)
		So(st, ShouldEqual, progression.StateAwaitingContinue)
		So(st.UnmarshalText([]byte("bogus")), ShouldNotBeNil)
	})
}
