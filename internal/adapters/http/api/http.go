// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/shopfloor/internal/domain/model"
)

const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Authenticator
	AuthDependencies
	CatalogDependencies
	TrainingDependencies
	ProgressDependencies
}

// Authenticator resolves bearer tokens to the signed-in employee.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Employee, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	auth            Authenticator
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	authHandler     *AuthHandler
	catalogHandler  *CatalogHandler
	trainingHandler *TrainingHandler
	progressHandler *ProgressHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		auth:            deps,
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		authHandler:     NewAuthHandler(deps),
		catalogHandler:  NewCatalogHandler(deps),
		trainingHandler: NewTrainingHandler(deps),
		progressHandler: NewProgressHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	authed := func(h employeeHandler) http.HandlerFunc { return RequireEmployee(s.auth, h) }
	optional := func(h employeeHandler) http.HandlerFunc { return OptionalEmployee(s.auth, h) }

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))
	mux.HandleFunc("/logout", MetricsMiddleware(authed(s.authHandler.HandleLogout), "logout"))
	mux.HandleFunc("/me", MetricsMiddleware(authed(s.authHandler.HandleMe), "me"))

	mux.HandleFunc("/categories", MetricsMiddleware(s.catalogHandler.HandleCategories, "categories"))
	mux.HandleFunc("/scenarios", MetricsMiddleware(optional(s.catalogHandler.HandleScenarios), "scenarios"))
	mux.HandleFunc("/scenarios/", MetricsMiddleware(optional(s.catalogHandler.HandleScenario), "scenario"))

	mux.HandleFunc("/training", MetricsMiddleware(authed(s.trainingHandler.HandleView), "training"))
	mux.HandleFunc("/training/start", MetricsMiddleware(authed(s.trainingHandler.HandleStart), "training_start"))
	mux.HandleFunc("/training/respond", MetricsMiddleware(authed(s.trainingHandler.HandleRespond), "training_respond"))
	mux.HandleFunc("/training/advance", MetricsMiddleware(authed(s.trainingHandler.HandleAdvance), "training_advance"))
	mux.HandleFunc("/training/reset", MetricsMiddleware(authed(s.trainingHandler.HandleReset), "training_reset"))
	mux.HandleFunc("/training/complete", MetricsMiddleware(authed(s.trainingHandler.HandleComplete), "training_complete"))

	mux.HandleFunc("/progress", MetricsMiddleware(authed(s.progressHandler.HandleProgress), "progress"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err, tags it with op and writes it.
func fail(w http.ResponseWriter, op string, err error) {
	status, code := statusOf(err)
	writeError(w, status, code, Wrap(op, err))
}

// allow writes 405 and returns false when r does not use method.
func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	return false
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
