package drill

import (
	"time"

	"github.com/okian/shopfloor/internal/domain/ledger"
)

// Config holds configuration for a training drill.
type Config struct {
	BaseURL    string        // Base URL of the service
	Email      string        // Employee to sign in as
	Password   string        // Optional password
	ScenarioID string        // Scenario to play through
	Answers    []string      // Scripted answers, reused cyclically across steps
	Rounds     int           // Number of full attempts
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for drill output
	Verbose    bool          // Log every step
}

// Stats holds drill statistics.
type Stats struct {
	Rounds          int
	StepsAnswered   int
	DuplicateReject int
	Retries         int
	LastScore       *int
	LastSummary     ledger.AttemptSummary
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// DefaultAnswers is the script used when Config.Answers is empty.
var DefaultAnswers = []string{
	"I'm so sorry for the trouble, I completely understand how frustrating this must be. Let me check your order right away and see what I can do to help.",
	"Thank you for your patience. I can offer a replacement or a full refund today, whichever you prefer, and I will personally make sure it is handled.",
	"I appreciate you bringing this to us. Our policy allows an exchange within 30 days, and I can help you with that right now if you would like.",
}

func (c *Config) answer(step int) string {
	answers := c.Answers
	if len(answers) == 0 {
		answers = DefaultAnswers
	}
	return answers[step%len(answers)]
}

func (c *Config) rounds() int {
	if c.Rounds < 1 {
		return 1
	}
	return c.Rounds
}
