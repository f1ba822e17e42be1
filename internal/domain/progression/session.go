// Package progression implements the linear scenario flow of one employee:
// start a scenario, answer each step, read the feedback, advance, and finally
// complete the attempt.
//
// Transitions that are not valid for the current state return an error
// instead of doing nothing.
package progression

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/shopfloor/internal/domain/dedupe"
	"github.com/okian/shopfloor/internal/domain/feedback"
	"github.com/okian/shopfloor/internal/domain/ledger"
	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/reply"
	"github.com/okian/shopfloor/pkg/logger"
	"github.com/okian/shopfloor/pkg/metrics"
)

// Catalog resolves scenarios and their ordered steps.
type Catalog interface {
	Scenario(id string) (model.TrainingScenario, bool)
	Steps(scenarioID string) []model.ScenarioStep
}

// Store persists progress records, scenario status and responses.
type Store interface {
	// EnsureProgress returns the record for the pair, creating it when absent.
	EnsureProgress(ctx context.Context, employeeID, scenarioID string, totalSteps int, startedAt time.Time) (model.ProgressRecord, error)
	// RaiseCompletedSteps sets completedSteps to max(current, completed), capped at totalSteps.
	RaiseCompletedSteps(ctx context.Context, employeeID, scenarioID string, completed int) (model.ProgressRecord, error)
	// FinalizeProgress marks every step completed and stores the attempt scores.
	FinalizeProgress(ctx context.Context, employeeID, scenarioID string, completedAt time.Time, avg *float64, best *int) (model.ProgressRecord, error)
	// MarkInProgress moves the scenario to in-progress unless it is completed.
	MarkInProgress(ctx context.Context, employeeID, scenarioID string) error
	// MarkCompleted marks the scenario completed with its last score.
	MarkCompleted(ctx context.Context, employeeID, scenarioID string, score *int) error
	// AppendResponse adds a scored response to the history.
	AppendResponse(ctx context.Context, resp model.EmployeeResponse) error
}

// Outcome is the result of a successful submission.
type Outcome struct {
	Response model.EmployeeResponse `json:"response"`
	Reply    reply.Reply            `json:"customer_reply"`
}

// Completion is the result of finalizing an attempt.
type Completion struct {
	Record  model.ProgressRecord  `json:"record"`
	Score   *int                  `json:"score,omitempty"`
	Summary ledger.AttemptSummary `json:"summary"`
}

// View is a read-only snapshot of a session.
type View struct {
	EmployeeID    string                   `json:"employee_id"`
	State         State                    `json:"state"`
	Attempt       int                      `json:"attempt"`
	Scenario      *model.TrainingScenario  `json:"scenario,omitempty"`
	Steps         []model.ScenarioStep     `json:"steps"`
	StepIndex     int                      `json:"step_index"`
	CurrentStep   *model.ScenarioStep      `json:"current_step,omitempty"`
	Responses     []model.EmployeeResponse `json:"responses"`
	CustomerReply *reply.Reply             `json:"customer_reply,omitempty"`
	Feedback      *model.Feedback          `json:"feedback,omitempty"`
	Processing    bool                     `json:"processing"`
}

// Session is the scenario state machine of one employee. It is safe for
// concurrent use; at most one submission runs at a time.
type Session struct {
	employeeID string
	catalog    Catalog
	store      Store
	provider   feedback.Provider
	seen       dedupe.Deduper
	log        logger.Logger
	now        func() time.Time
	newID      func() string
	timeout    time.Duration

	mu        sync.Mutex
	state     State
	scenario  *model.TrainingScenario
	steps     []model.ScenarioStep
	index     int
	attempt   int
	attemptID string
	responses []model.EmployeeResponse
	lastReply *reply.Reply
	lastFB    *model.Feedback
	inFlight  bool
}

// NewSession creates an idle session for the employee.
func NewSession(employeeID string, catalog Catalog, store Store, provider feedback.Provider, opts ...Option) (*Session, error) {
	if employeeID == "" {
		return nil, ErrNoActiveEmployee
	}
	if catalog == nil || store == nil || provider == nil {
		return nil, ErrMissingDependency
	}
	s := &Session{
		employeeID: employeeID,
		catalog:    catalog,
		store:      store,
		provider:   provider,
		seen:       dedupe.NewInMemoryDeduper(),
		log:        logger.Nop(),
		now:        time.Now,
		newID:      defaultIDGenerator,
		timeout:    defaultSubmitTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EmployeeID returns the employee the session belongs to.
func (s *Session) EmployeeID() string { return s.employeeID }

// Start begins a new attempt at the first step of the scenario.
func (s *Session) Start(ctx context.Context, scenarioID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return View{}, s.reject(ctx, "start", ErrSubmissionInFlight)
	}
	if s.state != StateIdle && s.state != StateComplete {
		return View{}, s.reject(ctx, "start", s.invalid("start"))
	}
	scenario, ok := s.catalog.Scenario(scenarioID)
	if !ok {
		return View{}, s.reject(ctx, "start", fmt.Errorf("%w: %q", ErrScenarioNotFound, scenarioID))
	}
	steps := s.catalog.Steps(scenarioID)
	if len(steps) == 0 {
		return View{}, s.reject(ctx, "start", fmt.Errorf("%w: %q", ErrNoSteps, scenarioID))
	}
	if _, err := s.store.EnsureProgress(ctx, s.employeeID, scenarioID, len(steps), s.now()); err != nil {
		return View{}, fmt.Errorf("ensure progress: %w", err)
	}

	s.scenario = &scenario
	s.steps = steps
	s.beginAttempt()
	metrics.RecordScenarioStarted(scenarioID)
	s.log.Info(ctx, "scenario started",
		logger.String("employee_id", s.employeeID),
		logger.String("scenario_id", scenarioID),
		logger.Int("steps", len(steps)),
		logger.Int("attempt", s.attempt),
	)
	return s.viewLocked(), nil
}

// Submit scores the response to the current step. The customer reply is
// produced first, then the feedback; both must succeed before the session
// moves to AwaitingContinue. Cancelling ctx does not abort a running
// submission; the session timeout bounds it instead.
func (s *Session) Submit(ctx context.Context, text string) (Outcome, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Outcome{}, s.reject(ctx, "submit", ErrSubmissionInFlight)
	}
	if s.state != StateInStep {
		err := s.invalid("submit")
		switch s.state {
		case StateIdle:
			err = fmt.Errorf("%w: %w", ErrNoActiveScenario, err)
		case StateAwaitingContinue:
			err = fmt.Errorf("%w: %w", ErrAlreadySubmitted, err)
		}
		s.mu.Unlock()
		return Outcome{}, s.reject(ctx, "submit", err)
	}
	step := s.steps[s.index]
	scenarioID := s.scenario.ID
	index := s.index
	key := dedupe.Key(s.employeeID, scenarioID, s.attemptID, step.ID)
	if s.seen.SeenAndRecord(ctx, key) {
		s.mu.Unlock()
		metrics.RecordDuplicateSubmission()
		return Outcome{}, s.reject(ctx, "submit", fmt.Errorf("%w: %s", ErrAlreadySubmitted, step.ID))
	}
	s.inFlight = true
	s.mu.Unlock()

	outcome, err := s.process(ctx, scenarioID, index, step, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		s.seen.Unrecord(ctx, key)
		return Outcome{}, err
	}

	s.responses = append(s.responses, outcome.Response)
	r := outcome.Reply
	fb := *outcome.Response.Feedback
	s.lastReply = &r
	s.lastFB = &fb
	s.state = StateAwaitingContinue
	return outcome, nil
}

// process runs the provider calls and persists the response. It runs without
// holding the session lock; inFlight keeps other transitions out.
func (s *Session) process(ctx context.Context, scenarioID string, index int, step model.ScenarioStep, text string) (Outcome, error) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	began := time.Now()
	customer, err := s.provider.CustomerReply(pctx, step, text)
	if err != nil {
		return Outcome{}, s.providerFailed(ctx, step, err)
	}
	fb, err := s.provider.Evaluate(pctx, step, text)
	if err != nil {
		return Outcome{}, s.providerFailed(ctx, step, err)
	}
	latency := time.Since(began)
	metrics.RecordFeedbackLatency(float64(latency.Milliseconds()))

	resp := model.EmployeeResponse{
		ID:           s.newID(),
		EmployeeID:   s.employeeID,
		ScenarioID:   scenarioID,
		StepID:       step.ID,
		ResponseText: text,
		Timestamp:    s.now(),
	}
	fb.ResponseID = resp.ID
	resp.Feedback = &fb

	// The response is appended last so a failed write leaves no history
	// entry behind and the step can be retried.
	if _, err := s.store.RaiseCompletedSteps(pctx, s.employeeID, scenarioID, index+1); err != nil {
		return Outcome{}, fmt.Errorf("raise completed steps: %w", err)
	}
	if err := s.store.MarkInProgress(pctx, s.employeeID, scenarioID); err != nil {
		return Outcome{}, fmt.Errorf("mark in progress: %w", err)
	}
	if err := s.store.AppendResponse(pctx, resp); err != nil {
		return Outcome{}, fmt.Errorf("append response: %w", err)
	}

	metrics.RecordReplyBranch(string(customer.Branch))
	metrics.RecordResponseScored(fb.OverallScore)
	s.log.Info(ctx, "response scored",
		logger.String("employee_id", s.employeeID),
		logger.String("scenario_id", scenarioID),
		logger.String("step_id", step.ID),
		logger.String("reply_branch", string(customer.Branch)),
		logger.Int("overall", fb.OverallScore),
		logger.Duration("latency", latency),
	)
	return Outcome{Response: resp, Reply: customer}, nil
}

func (s *Session) providerFailed(ctx context.Context, step model.ScenarioStep, err error) error {
	metrics.RecordProviderError()
	s.log.Warn(ctx, "feedback provider failed",
		logger.String("employee_id", s.employeeID),
		logger.String("step_id", step.ID),
		logger.Error(err),
	)
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}

// Advance moves to the next step, or to Complete after the last one.
func (s *Session) Advance(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingContinue {
		return View{}, s.reject(ctx, "advance", s.invalid("advance"))
	}
	s.lastReply = nil
	s.lastFB = nil
	if s.index+1 < len(s.steps) {
		s.index++
		s.state = StateInStep
	} else {
		s.state = StateComplete
	}
	return s.viewLocked(), nil
}

// Reset restarts the active scenario at its first step and discards the
// responses of the current attempt.
func (s *Session) Reset(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return View{}, s.reject(ctx, "reset", ErrSubmissionInFlight)
	}
	if s.scenario == nil {
		return View{}, s.reject(ctx, "reset", ErrNoActiveScenario)
	}
	s.beginAttempt()
	s.log.Debug(ctx, "scenario reset",
		logger.String("employee_id", s.employeeID),
		logger.String("scenario_id", s.scenario.ID),
		logger.Int("attempt", s.attempt),
	)
	return s.viewLocked(), nil
}

// Complete finalizes the attempt and returns the session to Idle.
func (s *Session) Complete(ctx context.Context) (Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateComplete {
		err := s.invalid("complete")
		if s.state == StateIdle {
			err = fmt.Errorf("%w: %w", ErrNoActiveScenario, err)
		}
		return Completion{}, s.reject(ctx, "complete", err)
	}

	scenarioID := s.scenario.ID
	avg, best := ledger.AttemptScores(s.responses)
	var score *int
	if avg != nil {
		v := ledger.RoundScore(*avg)
		score = &v
	}
	rec, err := s.store.FinalizeProgress(ctx, s.employeeID, scenarioID, s.now(), avg, best)
	if err != nil {
		return Completion{}, fmt.Errorf("finalize progress: %w", err)
	}
	if err := s.store.MarkCompleted(ctx, s.employeeID, scenarioID, score); err != nil {
		return Completion{}, fmt.Errorf("mark completed: %w", err)
	}

	summary := ledger.SummarizeAttempt(s.responses)
	metrics.RecordScenarioCompleted(scenarioID)
	s.log.Info(ctx, "scenario completed",
		logger.String("employee_id", s.employeeID),
		logger.String("scenario_id", scenarioID),
		logger.Int("overall", summary.OverallScore),
		logger.String("performance", summary.Performance),
	)

	s.state = StateIdle
	s.scenario = nil
	s.steps = nil
	s.index = 0
	s.responses = nil
	s.lastReply = nil
	s.lastFB = nil
	return Completion{Record: rec, Score: score, Summary: summary}, nil
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// beginAttempt must be called with s.mu held and a scenario set.
func (s *Session) beginAttempt() {
	s.attempt++
	s.attemptID = uuid.NewString()
	s.index = 0
	s.responses = nil
	s.lastReply = nil
	s.lastFB = nil
	s.state = StateInStep
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s in state %s", ErrInvalidTransition, op, s.state)
}

func (s *Session) reject(ctx context.Context, op string, err error) error {
	metrics.RecordTransitionError(op)
	s.log.Debug(ctx, "transition rejected",
		logger.String("employee_id", s.employeeID),
		logger.String("operation", op),
		logger.Error(err),
	)
	return err
}

// viewLocked must be called with s.mu held.
func (s *Session) viewLocked() View {
	v := View{
		EmployeeID: s.employeeID,
		State:      s.state,
		Attempt:    s.attempt,
		StepIndex:  s.index,
		Steps:      append([]model.ScenarioStep{}, s.steps...),
		Responses:  append([]model.EmployeeResponse{}, s.responses...),
		Processing: s.inFlight,
	}
	if s.scenario != nil {
		sc := *s.scenario
		v.Scenario = &sc
	}
	if s.state != StateIdle && s.index < len(s.steps) {
		st := s.steps[s.index]
		v.CurrentStep = &st
	}
	if s.lastReply != nil {
		r := *s.lastReply
		v.CustomerReply = &r
	}
	if s.lastFB != nil {
		fb := *s.lastFB
		v.Feedback = &fb
	}
	return v
}
