package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/shopfloor/internal/domain/catalog"
	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/reply"
	"github.com/okian/shopfloor/internal/domain/scoring"
	"github.com/okian/shopfloor/pkg/metrics"
)

type toolset struct {
	catalog   *catalog.Catalog
	engine    *scoring.Engine
	simulator *reply.Simulator
	maxChars  int
}

func (t *toolset) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_response",
		Description: "Score a customer-service response for empathy, clarity and responsiveness, with strengths and improvements.",
	}, t.scoreResponse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "simulate_customer",
		Description: "Return what the simulated customer says back to a response.",
	}, t.simulateCustomer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_scenarios",
		Description: "List training scenarios, optionally filtered by category (cs, sales, conflict, product).",
	}, t.listScenarios)
}

type responseInput struct {
	Text   string `json:"text"              jsonschema:"The employee's response to the customer"`
	StepID string `json:"step_id,omitempty" jsonschema:"Optional scenario step the response answers, e.g. cs-1-step1"`
}

type listInput struct {
	Category string `json:"category,omitempty" jsonschema:"Optional category id"`
}

type scenarioSummary struct {
	model.TrainingScenario
	StepCount int `json:"step_count"`
}

func (t *toolset) scoreResponse(_ context.Context, _ *mcp.CallToolRequest, in responseInput) (*mcp.CallToolResult, any, error) {
	step, text, errResult := t.prepare(in)
	if errResult != nil {
		return errResult, nil, nil
	}
	fb := t.engine.Evaluate(step, text)
	metrics.RecordResponseScored(fb.OverallScore)
	return textResult(jsonString(map[string]any{
		"step_id":  step.ID,
		"words":    scoring.WordCount(text),
		"feedback": fb,
	})), nil, nil
}

func (t *toolset) simulateCustomer(_ context.Context, _ *mcp.CallToolRequest, in responseInput) (*mcp.CallToolResult, any, error) {
	step, text, errResult := t.prepare(in)
	if errResult != nil {
		return errResult, nil, nil
	}
	r := t.simulator.Reply(step, text)
	metrics.RecordReplyBranch(string(r.Branch))
	return textResult(jsonString(r)), nil, nil
}

func (t *toolset) listScenarios(_ context.Context, _ *mcp.CallToolRequest, in listInput) (*mcp.CallToolResult, any, error) {
	category := strings.TrimSpace(in.Category)
	scenarios := t.catalog.Scenarios(category)
	if category != "" && len(scenarios) == 0 {
		return errorResult(fmt.Sprintf("unknown or empty category %q", category)), nil, nil
	}
	out := make([]scenarioSummary, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, scenarioSummary{TrainingScenario: s, StepCount: len(t.catalog.Steps(s.ID))})
	}
	return textResult(jsonString(out)), nil, nil
}

// prepare validates the input and resolves the optional step.
func (t *toolset) prepare(in responseInput) (model.ScenarioStep, string, *mcp.CallToolResult) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return model.ScenarioStep{}, "", errorResult("text is required")
	}
	if t.maxChars > 0 && utf8.RuneCountInString(text) > t.maxChars {
		return model.ScenarioStep{}, "", errorResult(fmt.Sprintf("text exceeds %d characters", t.maxChars))
	}
	if in.StepID == "" {
		return model.ScenarioStep{}, text, nil
	}
	step, ok := t.findStep(in.StepID)
	if !ok {
		return model.ScenarioStep{}, "", errorResult(fmt.Sprintf("unknown step %q", in.StepID))
	}
	return step, text, nil
}

func (t *toolset) findStep(id string) (model.ScenarioStep, bool) {
	for _, s := range t.catalog.Scenarios("") {
		for _, step := range t.catalog.Steps(s.ID) {
			if step.ID == id {
				return step, true
			}
		}
	}
	return model.ScenarioStep{}, false
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	res := textResult("error: " + msg)
	res.IsError = true
	return res
}

func jsonString(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("error marshaling result: %v", err)
	}
	return string(b)
}
