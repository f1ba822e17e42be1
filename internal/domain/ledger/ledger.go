// Package ledger derives progress metrics from progress records and the
// feedback of a scenario attempt. Everything here is pure.
package ledger

import (
	"math"
	"sort"

	"github.com/okian/shopfloor/internal/domain/model"
)

const topItemCount = 3

// Performance labels by overall score.
const (
	LabelExcellent          = "Excellent"
	LabelGood               = "Good"
	LabelSatisfactory       = "Satisfactory"
	LabelNeedsImprovement   = "Needs Improvement"
	LabelNeedsSignificantly = "Needs Significant Improvement"
)

// Summary is an employee's progress across the catalog.
type Summary struct {
	EmployeeID     string   `json:"employee_id"`
	TotalScenarios int      `json:"total_scenarios"`
	Completed      int      `json:"completed"`
	InProgress     int      `json:"in_progress"`
	CompletionRate float64  `json:"completion_rate"`
	AverageScore   *float64 `json:"average_score,omitempty"`
	BestScore      *int     `json:"best_score,omitempty"`
}

// Summarize computes the progress summary of one employee. Records of other
// employees are ignored. totalScenarios is the catalog size.
func Summarize(employeeID string, totalScenarios int, records []model.ProgressRecord) Summary {
	s := Summary{EmployeeID: employeeID, TotalScenarios: totalScenarios}

	var (
		sum      float64
		scored   int
		best     int
		haveBest bool
	)
	for _, r := range records {
		if r.EmployeeID != employeeID {
			continue
		}
		switch {
		case r.Completed():
			s.Completed++
		case r.InProgress():
			s.InProgress++
		}
		if r.AverageScore == nil {
			continue
		}
		sum += *r.AverageScore
		scored++
		if r.BestScore != nil && (!haveBest || *r.BestScore > best) {
			best = *r.BestScore
			haveBest = true
		}
	}

	if totalScenarios > 0 {
		s.CompletionRate = float64(s.Completed) * 100 / float64(totalScenarios)
	}
	if scored > 0 {
		avg := sum / float64(scored)
		s.AverageScore = &avg
	}
	if haveBest {
		s.BestScore = &best
	}
	return s
}

// AttemptSummary describes one finished scenario attempt.
type AttemptSummary struct {
	Responses           int      `json:"responses"`
	OverallScore        int      `json:"overall_score"`
	EmpathyScore        int      `json:"empathy_score"`
	ClarityScore        int      `json:"clarity_score"`
	ResponsivenessScore int      `json:"responsiveness_score"`
	Performance         string   `json:"performance"`
	TopStrengths        []string `json:"top_strengths"`
	TopImprovements     []string `json:"top_improvements"`
}

// SummarizeAttempt aggregates the feedback attached to an attempt's responses.
// Responses without feedback are skipped.
func SummarizeAttempt(responses []model.EmployeeResponse) AttemptSummary {
	var (
		overall, empathy, clarity, responsiveness int
		strengths, improvements                   []string
		n                                         int
	)
	for _, r := range responses {
		if r.Feedback == nil {
			continue
		}
		fb := r.Feedback
		n++
		overall += fb.OverallScore
		empathy += fb.EmpathyScore
		clarity += fb.ClarityScore
		responsiveness += fb.ResponsivenessScore
		strengths = append(strengths, fb.Strengths...)
		improvements = append(improvements, fb.Improvements...)
	}

	s := AttemptSummary{
		Responses:       n,
		TopStrengths:    TopItems(strengths, topItemCount),
		TopImprovements: TopItems(improvements, topItemCount),
	}
	if n > 0 {
		s.OverallScore = roundedMean(overall, n)
		s.EmpathyScore = roundedMean(empathy, n)
		s.ClarityScore = roundedMean(clarity, n)
		s.ResponsivenessScore = roundedMean(responsiveness, n)
	}
	s.Performance = PerformanceLabel(s.OverallScore)
	return s
}

// PerformanceLabel maps an overall score to its label.
func PerformanceLabel(score int) string {
	switch {
	case score >= 90:
		return LabelExcellent
	case score >= 80:
		return LabelGood
	case score >= 70:
		return LabelSatisfactory
	case score >= 60:
		return LabelNeedsImprovement
	default:
		return LabelNeedsSignificantly
	}
}

// TopItems returns up to count distinct items ordered by frequency. Ties keep
// the order of first appearance. The result is never nil.
func TopItems(items []string, count int) []string {
	type tally struct {
		item  string
		count int
	}
	index := make(map[string]int, len(items))
	tallies := make([]tally, 0, len(items))
	for _, it := range items {
		if j, ok := index[it]; ok {
			tallies[j].count++
			continue
		}
		index[it] = len(tallies)
		tallies = append(tallies, tally{item: it, count: 1})
	}
	sort.SliceStable(tallies, func(a, b int) bool {
		return tallies[a].count > tallies[b].count
	})

	out := make([]string, 0, count)
	for _, t := range tallies {
		if len(out) == count {
			break
		}
		out = append(out, t.item)
	}
	return out
}

// AttemptScores returns the average and best of the positive overall scores
// of an attempt. Both are nil when nothing positive was scored.
func AttemptScores(responses []model.EmployeeResponse) (*float64, *int) {
	var sum, n, best int
	for _, r := range responses {
		if r.Feedback == nil || r.Feedback.OverallScore <= 0 {
			continue
		}
		sum += r.Feedback.OverallScore
		n++
		if r.Feedback.OverallScore > best {
			best = r.Feedback.OverallScore
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, &best
}

// RoundScore rounds half up to the nearest integer score.
func RoundScore(v float64) int {
	return int(math.Floor(v + 0.5))
}

func roundedMean(sum, n int) int {
	return RoundScore(float64(sum) / float64(n))
}
