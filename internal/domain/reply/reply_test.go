package reply_test

import (
	"strings"
	"testing"

	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/reply"
	. "github.com/smartystreets/goconvey/convey"
)

var step = model.ScenarioStep{ID: "cs-1-step1", ScenarioID: "cs-1", Order: 1}

func TestSimulator_Reply(t *testing.T) {
	Convey("Given the default reply simulator", t, func() {
		sim := reply.NewSimulator()

		cases := []struct {
			name   string
			text   string
			branch reply.Branch
			line   string
		}{
			{"a one word apology", "Sorry.", reply.BranchTooShort, reply.LineMoreDetail},
			{"an empty response", "", reply.BranchTooShort, reply.LineMoreDetail},
			{"a short apology", "I'm so sorry about that, truly.", reply.BranchApology, reply.LineApologyShort},
			{
				"a detailed apology that also offers to track",
				"I'm sorry about the delay, I will check the tracking for you right away and get back to you within the hour.",
				reply.BranchApology, reply.LineApology,
			},
			{"a committed offer of help", "Let me see if I can help you with that.", reply.BranchHelp, reply.LineHelpOptions},
			{"a vague offer of help", "I would like to help you out here.", reply.BranchHelp, reply.LineHelpVague},
			{"an impersonal check", "Let me check the status of the order.", reply.BranchCheck, reply.LineCheckImpersonal},
			{"a personal check", "Let me check the status for you now.", reply.BranchCheck, reply.LineCheckUrgent},
			{"a refund offer", "We could offer you a refund on the item.", reply.BranchRefund, reply.LineRefundAlternates},
			{"a policy citation", "That is our store procedure, unfortunately.", reply.BranchPolicy, reply.LinePolicy},
			{"small talk", "The weather is lovely today, isn't it?", reply.BranchDefault, reply.LineDefault},
			{"mixed case keywords", "PLEASE ALLOW ME TO ASSIST, I WILL SORT IT.", reply.BranchHelp, reply.LineHelpOptions},
		}

		for _, tc := range cases {
			Convey("When the employee sends "+tc.name, func() {
				got := sim.Reply(step, tc.text)

				Convey("Then the "+string(tc.branch)+" branch answers", func() {
					So(got.Branch, ShouldEqual, tc.branch)
					So(got.Line, ShouldEqual, tc.line)
				})
			})
		}
	})
}

func TestSimulator_BranchPriority(t *testing.T) {
	Convey("Given responses that match several branches", t, func() {
		sim := reply.NewSimulator()

		Convey("When an apology also offers help and tracking", func() {
			got := sim.Reply(step, "I can help track it, sorry.")

			Convey("Then the apology branch wins", func() {
				So(got.Branch, ShouldEqual, reply.BranchApology)
			})
		})

		Convey("When a check also mentions refund policy", func() {
			got := sim.Reply(step, "Please check our refund policy today.")

			Convey("Then the check branch wins", func() {
				So(got.Branch, ShouldEqual, reply.BranchCheck)
			})
		})

		Convey("When a refund offer also cites policy", func() {
			got := sim.Reply(step, "Per our policy we offer a refund within 30 days.")

			Convey("Then the refund branch wins", func() {
				So(got.Branch, ShouldEqual, reply.BranchRefund)
			})
		})

		Convey("When a short text contains an apology keyword", func() {
			got := sim.Reply(step, "so sorry!")

			Convey("Then the length check fires first", func() {
				So(got.Branch, ShouldEqual, reply.BranchTooShort)
			})
		})
	})
}

func TestSimulator_Determinism(t *testing.T) {
	Convey("Given the same response sent repeatedly", t, func() {
		sim := reply.NewSimulator()
		text := strings.Repeat("I will help you with the refund. ", 3)
		first := sim.Reply(step, text)

		Convey("Then every call selects the same branch and line", func() {
			for i := 0; i < 50; i++ {
				So(sim.Reply(step, text), ShouldResemble, first)
			}
		})
	})
}

func TestSimulator_CustomRules(t *testing.T) {
	Convey("Given a simulator with replaced rules", t, func() {
		Convey("When no rules are configured", func() {
			sim := reply.NewSimulator(reply.WithRules(nil))

			Convey("Then every response falls through to the default line", func() {
				So(sim.Reply(step, "Sorry.").Branch, ShouldEqual, reply.BranchDefault)
			})
		})

		Convey("When a custom rule is prepended", func() {
			rules := append([]reply.Rule{{
				Branch: "greeting",
				Match:  func(s string) bool { return strings.HasPrefix(s, "hello") },
				Line:   func(string) string { return "Hi." },
			}}, reply.DefaultRules()...)
			sim := reply.NewSimulator(reply.WithRules(rules))

			Convey("Then it takes priority over the built-in branches", func() {
				got := sim.Reply(step, "Hello, I'm sorry for the wait today.")
				So(got.Branch, ShouldEqual, reply.Branch("greeting"))
				So(got.Line, ShouldEqual, "Hi.")
			})
		})
	})
}
