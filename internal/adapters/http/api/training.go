package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/progression"
)

// TrainingDependencies defines the interface for scenario progression.
type TrainingDependencies interface {
	Training(ctx context.Context, employeeID string) (progression.View, error)
	StartScenario(ctx context.Context, employeeID, scenarioID string) (progression.View, error)
	Respond(ctx context.Context, employeeID, text string) (progression.Outcome, error)
	Advance(ctx context.Context, employeeID string) (progression.View, error)
	Reset(ctx context.Context, employeeID string) (progression.View, error)
	CompleteScenario(ctx context.Context, employeeID string) (progression.Completion, error)
}

// TrainingHandler handles the scenario flow of the signed-in employee.
type TrainingHandler struct {
	deps TrainingDependencies
}

// NewTrainingHandler creates a new training handler.
func NewTrainingHandler(deps TrainingDependencies) *TrainingHandler {
	return &TrainingHandler{deps: deps}
}

type startRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type respondRequest struct {
	Text string `json:"text"`
}

// HandleView handles GET /training requests.
func (h *TrainingHandler) HandleView(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	h.writeView(w, "api.get_training", func() (progression.View, error) {
		return h.deps.Training(r.Context(), emp.ID)
	})
}

// HandleStart handles POST /training/start requests.
func (h *TrainingHandler) HandleStart(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	const op = "api.start_scenario"
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req startRequest
	if err := decode(r, &req); err != nil {
		fail(w, op, err)
		return
	}
	if strings.TrimSpace(req.ScenarioID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	h.writeView(w, op, func() (progression.View, error) {
		return h.deps.StartScenario(r.Context(), emp.ID, req.ScenarioID)
	})
}

// HandleRespond handles POST /training/respond requests.
func (h *TrainingHandler) HandleRespond(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	const op = "api.respond"
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req respondRequest
	if err := decode(r, &req); err != nil {
		fail(w, op, err)
		return
	}
	out, err := h.deps.Respond(r.Context(), emp.ID, req.Text)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAdvance handles POST /training/advance requests.
func (h *TrainingHandler) HandleAdvance(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	h.writeView(w, "api.advance", func() (progression.View, error) {
		return h.deps.Advance(r.Context(), emp.ID)
	})
}

// HandleReset handles POST /training/reset requests.
func (h *TrainingHandler) HandleReset(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	h.writeView(w, "api.reset", func() (progression.View, error) {
		return h.deps.Reset(r.Context(), emp.ID)
	})
}

// HandleComplete handles POST /training/complete requests.
func (h *TrainingHandler) HandleComplete(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	const op = "api.complete_scenario"
	if !allow(w, r, http.MethodPost) {
		return
	}
	done, err := h.deps.CompleteScenario(r.Context(), emp.ID)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func (h *TrainingHandler) writeView(w http.ResponseWriter, op string, fn func() (progression.View, error)) {
	v, err := fn()
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
