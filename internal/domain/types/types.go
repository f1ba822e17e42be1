// Package types contains the read shapes returned by the application service.
package types

import (
	"time"

	"github.com/okian/shopfloor/internal/domain/ledger"
	"github.com/okian/shopfloor/internal/domain/model"
)

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Employee  model.Employee `json:"employee"`
}

// ProgressReport is an employee's progress summary plus the records it was
// computed from.
type ProgressReport struct {
	Summary ledger.Summary         `json:"summary"`
	Records []model.ProgressRecord `json:"records"`
}

// ScenarioDetail is a scenario with its ordered steps.
type ScenarioDetail struct {
	Scenario model.TrainingScenario `json:"scenario"`
	Steps    []model.ScenarioStep   `json:"steps"`
}
