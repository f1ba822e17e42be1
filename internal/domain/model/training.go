// Package model contains domain models passed between layers.
package model

import "time"

// Difficulty grades how demanding a scenario is.
type Difficulty string

// Scenario difficulty levels.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// CompletionStatus tracks how far an employee got through a scenario.
type CompletionStatus string

// Scenario completion states.
const (
	StatusNotStarted CompletionStatus = "not-started"
	StatusInProgress CompletionStatus = "in-progress"
	StatusCompleted  CompletionStatus = "completed"
)

// Employee is a roster entry. Employees are selected at login, never created.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`

	// PasswordHash is an optional bcrypt hash. When empty any password is accepted.
	PasswordHash []byte `json:"-"`
}

// ScenarioCategory groups scenarios on the dashboard.
type ScenarioCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// TrainingScenario is a named exercise composed of ordered steps.
type TrainingScenario struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	Difficulty      Difficulty       `json:"difficulty"`
	DurationMinutes int              `json:"duration_minutes"`
	Status          CompletionStatus `json:"completion_status"`
	Score           *int             `json:"score,omitempty"`
}

// ScenarioStep is one customer prompt within a scenario. Order is 1-based.
type ScenarioStep struct {
	ID               string   `json:"id"`
	ScenarioID       string   `json:"scenario_id"`
	Order            int      `json:"order"`
	CustomerPrompt   string   `json:"customer_prompt"`
	ExpectedResponse []string `json:"expected_response,omitempty"`
	Tips             []string `json:"tips,omitempty"`
}

// EmployeeResponse is a single submitted answer to a step.
type EmployeeResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	ScenarioID   string    `json:"scenario_id"`
	StepID       string    `json:"step_id"`
	ResponseText string    `json:"response_text"`
	Timestamp    time.Time `json:"timestamp"`
	Feedback     *Feedback `json:"feedback,omitempty"`
}

// Feedback is the scored assessment of a response. Scores are in 0-100.
type Feedback struct {
	ID                  string   `json:"id"`
	ResponseID          string   `json:"response_id"`
	EmpathyScore        int      `json:"empathy_score"`
	ClarityScore        int      `json:"clarity_score"`
	ResponsivenessScore int      `json:"responsiveness_score"`
	OverallScore        int      `json:"overall_score"`
	Strengths           []string `json:"strengths"`
	Improvements        []string `json:"improvements"`
	Suggestions         string   `json:"suggestions"`
}

// ProgressRecord summarizes one employee's progress on one scenario.
type ProgressRecord struct {
	EmployeeID     string     `json:"employee_id"`
	ScenarioID     string     `json:"scenario_id"`
	CompletedSteps int        `json:"completed_steps"`
	TotalSteps     int        `json:"total_steps"`
	StartTime      time.Time  `json:"start_time"`
	CompletionTime *time.Time `json:"completion_time,omitempty"`
	AverageScore   *float64   `json:"average_score,omitempty"`
	BestScore      *int       `json:"best_score,omitempty"`
}

// Completed reports whether every step of the scenario has been completed.
func (p ProgressRecord) Completed() bool {
	return p.TotalSteps > 0 && p.CompletedSteps >= p.TotalSteps
}

// InProgress reports whether the scenario was started but not finished.
func (p ProgressRecord) InProgress() bool {
	return p.CompletedSteps > 0 && p.CompletedSteps < p.TotalSteps
}
