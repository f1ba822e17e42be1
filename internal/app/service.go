// Package service provides the application service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/okian/shopfloor/internal/adapters/kv"
	repository "github.com/okian/shopfloor/internal/adapters/repository"
	"github.com/okian/shopfloor/internal/domain/catalog"
	"github.com/okian/shopfloor/internal/domain/feedback"
	"github.com/okian/shopfloor/internal/domain/identity"
	"github.com/okian/shopfloor/internal/domain/ledger"
	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/progression"
	"github.com/okian/shopfloor/internal/domain/types"
	"github.com/okian/shopfloor/pkg/logger"
	"github.com/okian/shopfloor/pkg/metrics"
)

// Service implements the API dependencies of the training simulator.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog  *catalog.Catalog
	store    *repository.MemoryStore
	kv       kv.Store
	provider feedback.Provider
	holder   *identity.Holder
	issuer   *identity.Issuer
	sessions map[string]*progression.Session

	// Configuration
	signingKey       string
	tokenTTL         time.Duration
	submitTimeout    time.Duration
	maxResponseChars int
	seedDemo         bool
	now              func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:         make(map[string]*progression.Session),
		signingKey:       "shopfloor-dev-secret",
		tokenTTL:         8 * time.Hour,
		submitTimeout:    5 * time.Second,
		maxResponseChars: 2000,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and restores a persisted session.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.kv == nil {
		s.kv = kv.NewMemoryStore()
	}
	if s.provider == nil {
		s.provider = feedback.NewLocalProvider()
	}

	var storeOpts []repository.Option
	if s.seedDemo {
		storeOpts = append(storeOpts, repository.WithSeed(s.catalog.SeedProgress()))
	}
	store, err := repository.NewMemoryStore(storeOpts...)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	issuer, err := identity.NewIssuer(s.signingKey, identity.WithTTL(s.tokenTTL), identity.WithIssuerClock(s.now))
	if err != nil {
		return fmt.Errorf("build token issuer: %w", err)
	}
	holder := identity.NewHolder(s.catalog, s.kv, identity.WithLogger(s.logger.Named("identity")))
	emp, err := holder.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.store = store
	s.issuer = issuer
	s.holder = holder
	s.started = true
	metrics.UpdateCatalogScenarios(len(s.catalog.Scenarios("")))

	fields := []logger.Field{
		logger.Int("scenarios", len(s.catalog.Scenarios(""))),
		logger.Int("progressRecords", store.Count(ctx)),
	}
	if emp != nil {
		fields = append(fields, logger.String("employee_id", emp.ID))
	}
	s.logger.Info(ctx, "training service started", fields...)
	return nil
}

// Stop releases the session store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.kv.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing session store failed", logger.Error(err))
	}
	s.sessions = make(map[string]*progression.Session)
	s.started = false
	s.logger.Info(context.Background(), "training service stopped")
}

// Login signs the employee in and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (types.LoginResult, error) {
	if err := s.ready(); err != nil {
		return types.LoginResult{}, err
	}
	emp, err := s.holder.Login(ctx, email, password)
	if err != nil {
		return types.LoginResult{}, err
	}
	tok, exp, err := s.issuer.Issue(emp.ID, emp.Email)
	if err != nil {
		return types.LoginResult{}, err
	}
	return types.LoginResult{Token: tok, ExpiresAt: exp, Employee: emp}, nil
}

// Logout signs the current employee out and drops their session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if emp, ok := s.holder.Current(); ok {
		s.mu.Lock()
		delete(s.sessions, emp.ID)
		s.mu.Unlock()
	}
	return s.holder.Logout(ctx)
}

// Authenticate resolves a bearer token to the signed-in employee. Tokens of
// an employee who is no longer signed in are rejected.
func (s *Service) Authenticate(_ context.Context, token string) (model.Employee, error) {
	if err := s.ready(); err != nil {
		return model.Employee{}, err
	}
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return model.Employee{}, err
	}
	emp, ok := s.holder.Current()
	if !ok || emp.ID != claims.EmployeeID {
		return model.Employee{}, identity.ErrNotSignedIn
	}
	return emp, nil
}

// Current returns the signed-in employee.
func (s *Service) Current(_ context.Context) (model.Employee, error) {
	if err := s.ready(); err != nil {
		return model.Employee{}, err
	}
	emp, ok := s.holder.Current()
	if !ok {
		return model.Employee{}, identity.ErrNotSignedIn
	}
	return emp, nil
}

// Categories lists the scenario categories.
func (s *Service) Categories(_ context.Context) []model.ScenarioCategory {
	return s.catalogOrDefault().Categories()
}

// Scenarios lists scenarios, optionally filtered by category. With an
// employee id, each scenario carries that employee's status and score.
func (s *Service) Scenarios(ctx context.Context, employeeID, category string) []model.TrainingScenario {
	list := s.catalogOrDefault().Scenarios(category)
	if employeeID == "" || s.ready() != nil {
		return list
	}
	for i := range list {
		st := s.store.Status(ctx, employeeID, list[i].ID)
		list[i].Status = st.Status
		list[i].Score = st.Score
	}
	return list
}

// Scenario returns one scenario with its steps.
func (s *Service) Scenario(ctx context.Context, employeeID, scenarioID string) (types.ScenarioDetail, error) {
	c := s.catalogOrDefault()
	sc, ok := c.Scenario(scenarioID)
	if !ok {
		return types.ScenarioDetail{}, fmt.Errorf("%w: %q", ErrScenarioNotFound, scenarioID)
	}
	if employeeID != "" && s.ready() == nil {
		st := s.store.Status(ctx, employeeID, scenarioID)
		sc.Status = st.Status
		sc.Score = st.Score
	}
	return types.ScenarioDetail{Scenario: sc, Steps: c.Steps(scenarioID)}, nil
}

// Training returns the employee's session snapshot.
func (s *Service) Training(_ context.Context, employeeID string) (progression.View, error) {
	sess, err := s.session(employeeID)
	if err != nil {
		return progression.View{}, err
	}
	return sess.View(), nil
}

// StartScenario begins a scenario attempt.
func (s *Service) StartScenario(ctx context.Context, employeeID, scenarioID string) (progression.View, error) {
	sess, err := s.session(employeeID)
	if err != nil {
		return progression.View{}, err
	}
	return sess.Start(ctx, scenarioID)
}

// Respond submits the response to the current step.
func (s *Service) Respond(ctx context.Context, employeeID, text string) (progression.Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return progression.Outcome{}, ErrEmptyResponse
	}
	if n := utf8.RuneCountInString(text); n > s.maxResponseChars {
		return progression.Outcome{}, fmt.Errorf("%w: %d > %d characters", ErrResponseTooLong, n, s.maxResponseChars)
	}
	sess, err := s.session(employeeID)
	if err != nil {
		return progression.Outcome{}, err
	}
	return sess.Submit(ctx, text)
}

// Advance moves past the feedback of the current step.
func (s *Service) Advance(ctx context.Context, employeeID string) (progression.View, error) {
	sess, err := s.session(employeeID)
	if err != nil {
		return progression.View{}, err
	}
	return sess.Advance(ctx)
}

// Reset restarts the active scenario.
func (s *Service) Reset(ctx context.Context, employeeID string) (progression.View, error) {
	sess, err := s.session(employeeID)
	if err != nil {
		return progression.View{}, err
	}
	return sess.Reset(ctx)
}

// CompleteScenario finalizes the attempt.
func (s *Service) CompleteScenario(ctx context.Context, employeeID string) (progression.Completion, error) {
	sess, err := s.session(employeeID)
	if err != nil {
		return progression.Completion{}, err
	}
	return sess.Complete(ctx)
}

// Progress returns the employee's progress report.
func (s *Service) Progress(ctx context.Context, employeeID string) (types.ProgressReport, error) {
	if err := s.ready(); err != nil {
		return types.ProgressReport{}, err
	}
	if employeeID == "" {
		return types.ProgressReport{}, identity.ErrNotSignedIn
	}
	records := s.store.Progress(ctx, employeeID)
	if records == nil {
		records = []model.ProgressRecord{}
	}
	total := len(s.catalog.Scenarios(""))
	return types.ProgressReport{
		Summary: ledger.Summarize(employeeID, total, records),
		Records: records,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"submitTimeoutMs":  s.submitTimeout.Milliseconds(),
		"maxResponseChars": s.maxResponseChars,
	}
	if s.started {
		ctx := context.Background()
		records := s.store.Count(ctx)
		stats["scenarios"] = len(s.catalog.Scenarios(""))
		stats["progressRecords"] = records
		stats["sessions"] = len(s.sessions)
		if emp, ok := s.holder.Current(); ok {
			stats["currentEmployee"] = emp.ID
		}
		metrics.UpdateProgressRecords(records)
	}
	return stats
}

// session returns the employee's session, creating it on first use.
func (s *Service) session(employeeID string) (*progression.Session, error) {
	if employeeID == "" {
		return nil, identity.ErrNotSignedIn
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	if sess, ok := s.sessions[employeeID]; ok {
		return sess, nil
	}
	sess, err := progression.NewSession(employeeID, s.catalog, s.store, s.provider,
		progression.WithTimeout(s.submitTimeout),
		progression.WithClock(s.now),
		progression.WithLogger(s.logger.Named("progression")),
	)
	if err != nil {
		return nil, err
	}
	s.sessions[employeeID] = sess
	return sess, nil
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) catalogOrDefault() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog != nil {
		return s.catalog
	}
	return catalog.Default()
}
