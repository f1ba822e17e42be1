// Package identity tracks which employee is signed in. The current employee
// is persisted so that a restart resumes the same session.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/shopfloor/internal/adapters/kv"
	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/pkg/logger"
	"github.com/okian/shopfloor/pkg/metrics"
)

// CurrentEmployeeKey is the storage key of the signed-in employee.
const CurrentEmployeeKey = "currentEmployee"

// Login results reported to metrics.
const (
	resultSuccess     = "success"
	resultUnknown     = "unknown_email"
	resultBadPassword = "bad_password"
	resultInvalid     = "invalid_request"
)

// Roster lists the employees that may sign in.
type Roster interface {
	Employees() []model.Employee
}

// Holder owns the signed-in employee.
type Holder struct {
	roster Roster
	store  kv.Store
	log    logger.Logger
	key    string

	mu      sync.RWMutex
	current *model.Employee
}

// NewHolder creates a Holder with nobody signed in. Call Restore to load a
// persisted session.
func NewHolder(roster Roster, store kv.Store, opts ...Option) *Holder {
	h := &Holder{
		roster: roster,
		store:  store,
		log:    logger.Nop(),
		key:    CurrentEmployeeKey,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Restore loads the persisted employee, if any. A record that cannot be
// decoded or no longer matches the roster is discarded.
func (h *Holder) Restore(ctx context.Context) (*model.Employee, error) {
	raw, err := h.store.Get(ctx, h.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionStoreFailure, err)
	}

	var stored model.Employee
	if err := json.Unmarshal(raw, &stored); err != nil {
		h.log.Warn(ctx, "discarding unreadable session", logger.Error(err))
		return nil, h.clear(ctx)
	}
	emp, ok := h.byID(stored.ID)
	if !ok {
		h.log.Warn(ctx, "discarding session for unknown employee", logger.String("employee_id", stored.ID))
		return nil, h.clear(ctx)
	}

	h.set(&emp)
	h.log.Info(ctx, "session restored", logger.String("employee_id", emp.ID))
	return &emp, nil
}

// Login signs the employee with the given email in. The password is only
// checked when the roster entry carries a hash.
func (h *Holder) Login(ctx context.Context, email, password string) (model.Employee, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		metrics.RecordLogin(resultInvalid)
		return model.Employee{}, ErrMissingCredentials
	}
	emp, ok := h.byEmail(email)
	if !ok {
		metrics.RecordLogin(resultUnknown)
		h.log.Debug(ctx, "login for unknown email", logger.String("email", email))
		return model.Employee{}, ErrInvalidCredentials
	}
	if len(emp.PasswordHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(emp.PasswordHash, []byte(password)); err != nil {
			metrics.RecordLogin(resultBadPassword)
			return model.Employee{}, ErrInvalidCredentials
		}
	}

	raw, err := json.Marshal(emp)
	if err != nil {
		return model.Employee{}, fmt.Errorf("encode session: %w", err)
	}
	if err := h.store.Put(ctx, h.key, raw); err != nil {
		return model.Employee{}, fmt.Errorf("%w: %w", ErrSessionStoreFailure, err)
	}

	h.set(&emp)
	metrics.RecordLogin(resultSuccess)
	h.log.Info(ctx, "employee signed in", logger.String("employee_id", emp.ID))
	return emp, nil
}

// Logout clears the current employee. Logging out twice is not an error.
func (h *Holder) Logout(ctx context.Context) error {
	if err := h.clear(ctx); err != nil {
		return err
	}
	h.log.Info(ctx, "employee signed out")
	return nil
}

// Current returns the signed-in employee.
func (h *Holder) Current() (model.Employee, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return model.Employee{}, false
	}
	return *h.current, true
}

func (h *Holder) clear(ctx context.Context) error {
	h.set(nil)
	if err := h.store.Delete(ctx, h.key); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionStoreFailure, err)
	}
	return nil
}

func (h *Holder) set(emp *model.Employee) {
	h.mu.Lock()
	h.current = emp
	h.mu.Unlock()
	if emp != nil {
		metrics.UpdateActiveSessions(1)
	} else {
		metrics.UpdateActiveSessions(0)
	}
}

func (h *Holder) byEmail(email string) (model.Employee, bool) {
	for _, e := range h.roster.Employees() {
		if strings.EqualFold(strings.TrimSpace(e.Email), email) {
			return e, true
		}
	}
	return model.Employee{}, false
}

func (h *Holder) byID(id string) (model.Employee, bool) {
	for _, e := range h.roster.Employees() {
		if e.ID == id {
			return e, true
		}
	}
	return model.Employee{}, false
}
