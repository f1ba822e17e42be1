// Package reply simulates the customer's next line of dialogue from the
// employee's response using an ordered list of keyword rules.
package reply

import (
	"strings"
	"unicode/utf8"

	"github.com/okian/shopfloor/internal/domain/model"
)

// Thresholds used by the rules, in runes.
const (
	minDetailedLength = 20
	minApologyLength  = 50
)

// Branch names the rule that produced a reply.
type Branch string

// Reply branches in evaluation order.
const (
	BranchTooShort Branch = "too_short"
	BranchApology  Branch = "apology"
	BranchHelp     Branch = "help"
	BranchCheck    Branch = "check"
	BranchRefund   Branch = "refund"
	BranchPolicy   Branch = "policy"
	BranchDefault  Branch = "default"
)

// Customer lines.
const (
	LineMoreDetail       = "That's not very helpful. Can you please give me a more detailed response?"
	LineApologyShort     = "I appreciate your apology, but I need more than just 'sorry'. What are you going to do to fix my problem?"
	LineApology          = "I appreciate your apology, but I still need to know what you can do about my situation."
	LineHelpVague        = "You're saying you want to help, but how exactly are you planning to do that?"
	LineHelpOptions      = "Thank you for offering to help. What are my options at this point?"
	LineCheckImpersonal  = "Yes, please check on that for me. But I need you to be more personal in your approach."
	LineCheckUrgent      = "Yes, please check on that for me. I really need this order soon."
	LineRefundAlternates = "That's helpful, but I was hoping there might be another solution before resorting to a refund."
	LinePolicy           = "I don't care about your policy. I just want my problem solved. Can you help me or not?"
	LineDefault          = "I don't feel like you're understanding my concern. Can you please be more specific about how you'll resolve this issue?"
)

// Reply is the simulated customer line and the branch that produced it.
type Reply struct {
	Branch Branch `json:"branch"`
	Line   string `json:"line"`
}

// Rule is one entry of the decision list. The first rule whose Match
// returns true produces the reply.
type Rule struct {
	Branch Branch
	Match  func(text string) bool
	Line   func(text string) string
}

func fixed(line string) func(string) string {
	return func(string) string { return line }
}

func containsAny(s string, fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in decision list. Rules see lower-cased text.
func DefaultRules() []Rule {
	return []Rule{
		{
			Branch: BranchTooShort,
			Match:  func(s string) bool { return utf8.RuneCountInString(s) < minDetailedLength },
			Line:   fixed(LineMoreDetail),
		},
		{
			Branch: BranchApology,
			Match:  func(s string) bool { return containsAny(s, "sorry", "apologize") },
			Line: func(s string) string {
				if utf8.RuneCountInString(s) < minApologyLength {
					return LineApologyShort
				}
				return LineApology
			},
		},
		{
			Branch: BranchHelp,
			Match:  func(s string) bool { return containsAny(s, "help", "assist") },
			Line: func(s string) string {
				if !containsAny(s, "will", "can") {
					return LineHelpVague
				}
				return LineHelpOptions
			},
		},
		{
			Branch: BranchCheck,
			Match:  func(s string) bool { return containsAny(s, "check", "track") },
			Line: func(s string) string {
				if !strings.Contains(s, "for you") {
					return LineCheckImpersonal
				}
				return LineCheckUrgent
			},
		},
		{
			Branch: BranchRefund,
			Match:  func(s string) bool { return containsAny(s, "refund", "discount") },
			Line:   fixed(LineRefundAlternates),
		},
		{
			Branch: BranchPolicy,
			Match:  func(s string) bool { return containsAny(s, "policy", "procedure") },
			Line:   fixed(LinePolicy),
		},
	}
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithRules replaces the decision list. The default line is still used when
// no rule matches.
func WithRules(rules []Rule) Option {
	return func(s *Simulator) {
		s.rules = append([]Rule(nil), rules...)
	}
}

// Simulator picks the customer's next line. It is stateless and safe for
// concurrent use.
type Simulator struct {
	rules []Rule
}

// NewSimulator creates a simulator with the default rules unless overridden.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{rules: DefaultRules()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply returns the customer's line for the employee response. The step is
// the conversational context; the built-in rules only look at the text.
func (s *Simulator) Reply(_ model.ScenarioStep, text string) Reply {
	lower := strings.ToLower(text)
	for _, r := range s.rules {
		if r.Match(lower) {
			return Reply{Branch: r.Branch, Line: r.Line(lower)}
		}
	}
	return Reply{Branch: BranchDefault, Line: LineDefault}
}
