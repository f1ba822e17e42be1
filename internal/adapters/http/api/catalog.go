package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/types"
)

// CatalogDependencies defines the interface for catalog reads.
type CatalogDependencies interface {
	Categories(ctx context.Context) []model.ScenarioCategory
	Scenarios(ctx context.Context, employeeID, category string) []model.TrainingScenario
	Scenario(ctx context.Context, employeeID, scenarioID string) (types.ScenarioDetail, error)
}

// CatalogHandler handles category and scenario requests.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleCategories handles GET /categories requests.
func (h *CatalogHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Categories(r.Context()))
}

// HandleScenarios handles GET /scenarios[?category=] requests. Statuses are
// per employee when a valid token is sent.
func (h *CatalogHandler) HandleScenarios(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, h.deps.Scenarios(r.Context(), emp.ID, category))
}

// HandleScenario handles GET /scenarios/{id} requests.
func (h *CatalogHandler) HandleScenario(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	const op = "api.get_scenario"
	if !allow(w, r, http.MethodGet) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/scenarios/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	detail, err := h.deps.Scenario(r.Context(), emp.ID, id)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
