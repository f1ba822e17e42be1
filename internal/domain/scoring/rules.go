package scoring

import "strings"

// adjustment is one additive score rule. Rules are applied in order and
// every matching rule contributes its delta.
type adjustment struct {
	name  string
	dim   Dimension
	delta int
	when  func(signals) bool
}

var adjustments = []adjustment{
	{
		name: "acknowledges feelings", dim: Empathy, delta: 10,
		when: func(s signals) bool { return s.has("understand", "sorry") },
	},
	{
		name: "ignores feelings", dim: Empathy, delta: -15,
		when: func(s signals) bool { return !s.has("understand", "sorry") },
	},
	{
		name: "names frustration", dim: Empathy, delta: 15,
		when: func(s signals) bool { return s.has("frustrat", "disappoint") },
	},
	{
		name: "impersonal", dim: Empathy, delta: -20,
		when: func(s signals) bool { return !s.has("you", "your") },
	},
	{
		name: "long without structure", dim: Clarity, delta: -15,
		when: func(s signals) bool { return s.words > longWordLimit && !s.has("step", "process") },
	},
	{
		name: "rigid policy", dim: Clarity, delta: -10,
		when: func(s signals) bool { return s.has("policy") && !s.has("exception") },
	},
	{
		name: "clear commitment", dim: Clarity, delta: 10,
		when: func(s signals) bool { return s.has("can") && s.has("will") },
	},
	{
		name: "no resolution offered", dim: Responsiveness, delta: -25,
		when: func(s signals) bool { return !s.has("help", "assist", "resolve", "solution") },
	},
	{
		name: "premature escalation", dim: Responsiveness, delta: -15,
		when: func(s signals) bool { return s.has("manager", "supervisor") },
	},
	{
		name: "urgency", dim: Responsiveness, delta: 10,
		when: func(s signals) bool { return s.has("immediately", "right away") },
	},
}

// note is a qualitative remark emitted when its predicate holds.
type note struct {
	text string
	when func(signals, Scores) bool
}

// Feedback strings shared with callers that want to match on them.
const (
	StrengthEmpathy        = "Shows good empathy by acknowledging customer feelings"
	StrengthClarity        = "Provides clear information about next steps"
	StrengthResponsiveness = "Actively offers solutions to address the issue"
	StrengthApology        = "Takes ownership with a proper apology"
	StrengthInitiative     = "Shows initiative in finding solutions"
	StrengthFallback       = "Makes an attempt to address the customer's concern"

	ImprovementEmpathy        = "Could show more empathy by acknowledging customer's feelings"
	ImprovementClarity        = "Response could be more structured with clearer steps or options"
	ImprovementResponsiveness = "Should offer more specific solutions instead of generic responses"
	ImprovementApology        = "Missing an apology for the inconvenience caused"
	ImprovementLimitations    = "Focuses too much on limitations rather than possibilities"
	ImprovementBrief          = "Response is too brief to adequately address customer concerns"
	ImprovementVerbose        = "Response is overly verbose which may frustrate an already upset customer"

	suggestionOpener         = "Try to balance empathy with practical solutions."
	suggestionEmpathy        = "Start by acknowledging how the customer feels before offering solutions."
	suggestionClarity        = "Structure your response with clear, numbered steps when possible."
	suggestionResponsiveness = "Offer specific actions you will take, with timeframes if possible."
)

var strengthNotes = []note{
	{StrengthEmpathy, func(_ signals, s Scores) bool { return s.Empathy > strengthThreshold }},
	{StrengthClarity, func(_ signals, s Scores) bool { return s.Clarity > strengthThreshold }},
	{StrengthResponsiveness, func(_ signals, s Scores) bool { return s.Responsiveness > strengthThreshold }},
	{StrengthApology, func(sig signals, _ Scores) bool { return sig.apologizes() }},
	{StrengthInitiative, func(sig signals, _ Scores) bool { return sig.has("what i can do", "what we can do") }},
}

var improvementNotes = []note{
	{ImprovementEmpathy, func(_ signals, s Scores) bool { return s.Empathy < strengthThreshold }},
	{ImprovementClarity, func(_ signals, s Scores) bool { return s.Clarity < strengthThreshold }},
	{ImprovementResponsiveness, func(_ signals, s Scores) bool { return s.Responsiveness < strengthThreshold }},
	{ImprovementApology, func(sig signals, _ Scores) bool { return !sig.apologizes() }},
	{ImprovementLimitations, func(sig signals, _ Scores) bool { return sig.has("policy", "cannot") }},
	{ImprovementBrief, func(sig signals, _ Scores) bool { return sig.words < briefWordLimit }},
	{ImprovementVerbose, func(sig signals, _ Scores) bool { return sig.words > verboseWordLimit }},
}

func collect(notes []note, sig signals, s Scores) []string {
	out := []string{}
	for _, n := range notes {
		if n.when(sig, s) {
			out = append(out, n.text)
		}
	}
	return out
}

// strengths never returns an empty list.
func strengths(sig signals, s Scores) []string {
	out := collect(strengthNotes, sig, s)
	if len(out) == 0 {
		out = append(out, StrengthFallback)
	}
	return out
}

func improvements(sig signals, s Scores) []string {
	return collect(improvementNotes, sig, s)
}

func suggestions(s Scores) string {
	parts := []string{suggestionOpener}
	if s.Empathy < suggestionThreshold {
		parts = append(parts, suggestionEmpathy)
	}
	if s.Clarity < suggestionThreshold {
		parts = append(parts, suggestionClarity)
	}
	if s.Responsiveness < suggestionThreshold {
		parts = append(parts, suggestionResponsiveness)
	}
	return strings.Join(parts, " ")
}
