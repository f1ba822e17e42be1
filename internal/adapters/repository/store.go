// Package repository stores per-employee training progress: progress records,
// scenario completion status and the response history.
package repository

import (
	"context"
	"time"

	"github.com/okian/shopfloor/internal/domain/model"
)

// ScenarioStatus is the completion state of one scenario for one employee.
type ScenarioStatus struct {
	Status model.CompletionStatus `json:"status"`
	Score  *int                   `json:"score,omitempty"`
}

// Store provides read/write access to training progress.
type Store interface {
	EnsureProgress(ctx context.Context, employeeID, scenarioID string, totalSteps int, startedAt time.Time) (model.ProgressRecord, error)
	RaiseCompletedSteps(ctx context.Context, employeeID, scenarioID string, completed int) (model.ProgressRecord, error)
	FinalizeProgress(ctx context.Context, employeeID, scenarioID string, completedAt time.Time, avg *float64, best *int) (model.ProgressRecord, error)
	MarkInProgress(ctx context.Context, employeeID, scenarioID string) error
	MarkCompleted(ctx context.Context, employeeID, scenarioID string, score *int) error
	AppendResponse(ctx context.Context, resp model.EmployeeResponse) error

	// Progress returns the employee's records ordered by scenario id.
	Progress(ctx context.Context, employeeID string) []model.ProgressRecord
	// ProgressFor returns one record or ErrNotFound.
	ProgressFor(ctx context.Context, employeeID, scenarioID string) (model.ProgressRecord, error)
	// Status returns the scenario status; unknown pairs are not-started.
	Status(ctx context.Context, employeeID, scenarioID string) ScenarioStatus
	// Responses returns the response history of the pair in submission order.
	Responses(ctx context.Context, employeeID, scenarioID string) []model.EmployeeResponse

	// Count returns the number of progress records.
	Count(ctx context.Context) int
}
