package api

import (
	"context"
	"net/http"

	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/types"
)

// ProgressDependencies defines the interface for progress reads.
type ProgressDependencies interface {
	Progress(ctx context.Context, employeeID string) (types.ProgressReport, error)
}

// ProgressHandler handles progress requests.
type ProgressHandler struct {
	deps ProgressDependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleProgress handles GET /progress requests.
func (h *ProgressHandler) HandleProgress(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	const op = "api.get_progress"
	if !allow(w, r, http.MethodGet) {
		return
	}
	rep, err := h.deps.Progress(r.Context(), emp.ID)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
