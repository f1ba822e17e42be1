// Package catalog holds the static training content: the employee roster,
// scenario categories, scenarios and their ordered steps.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/shopfloor/internal/domain/model"
)

// Catalog is an immutable, validated view over the training content.
type Catalog struct {
	employees  []model.Employee
	categories []model.ScenarioCategory
	scenarios  []model.TrainingScenario

	scenarioByID map[string]int
	stepsByID    map[string][]model.ScenarioStep
	progress     []model.ProgressRecord
}

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithEmployees replaces the roster.
func WithEmployees(employees ...model.Employee) Option {
	return func(c *Catalog) {
		c.employees = append([]model.Employee(nil), employees...)
	}
}

// WithCategories replaces the scenario categories.
func WithCategories(categories ...model.ScenarioCategory) Option {
	return func(c *Catalog) {
		c.categories = append([]model.ScenarioCategory(nil), categories...)
	}
}

// WithScenarios replaces the scenarios and their steps.
func WithScenarios(scenarios []model.TrainingScenario, steps []model.ScenarioStep) Option {
	return func(c *Catalog) {
		c.scenarios = append([]model.TrainingScenario(nil), scenarios...)
		c.stepsByID = groupSteps(steps)
	}
}

// WithSeedProgress sets progress records that a fresh store may be primed with.
func WithSeedProgress(records ...model.ProgressRecord) Option {
	return func(c *Catalog) {
		c.progress = append([]model.ProgressRecord(nil), records...)
	}
}

// New builds a Catalog from the built-in content, applies opts and validates
// the result.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		employees:  seedEmployees(),
		categories: seedCategories(),
		scenarios:  seedScenarios(),
		stepsByID:  groupSteps(seedSteps()),
		progress:   seedProgress(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns the built-in catalog. It panics if the built-in content is
// inconsistent, which is a programming error.
func Default() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

func groupSteps(steps []model.ScenarioStep) map[string][]model.ScenarioStep {
	out := make(map[string][]model.ScenarioStep)
	for _, st := range steps {
		out[st.ScenarioID] = append(out[st.ScenarioID], st)
	}
	for id := range out {
		sort.SliceStable(out[id], func(i, j int) bool { return out[id][i].Order < out[id][j].Order })
	}
	return out
}

// index builds lookups and enforces catalog invariants.
func (c *Catalog) index() error {
	c.scenarioByID = make(map[string]int, len(c.scenarios))
	for i, s := range c.scenarios {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("%w: scenario at index %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.scenarioByID[s.ID]; dup {
			return fmt.Errorf("%w: duplicate scenario %q", ErrInvalidCatalog, s.ID)
		}
		if !s.Difficulty.Valid() {
			return fmt.Errorf("%w: scenario %q has unknown difficulty %q", ErrInvalidCatalog, s.ID, s.Difficulty)
		}
		c.scenarioByID[s.ID] = i
	}

	seenStep := make(map[string]bool)
	for scenarioID, steps := range c.stepsByID {
		if _, ok := c.scenarioByID[scenarioID]; !ok {
			return fmt.Errorf("%w: steps reference unknown scenario %q", ErrInvalidCatalog, scenarioID)
		}
		for i, st := range steps {
			if st.Order != i+1 {
				return fmt.Errorf("%w: scenario %q step orders must be unique and contiguous from 1, got %d at position %d",
					ErrInvalidCatalog, scenarioID, st.Order, i+1)
			}
			if seenStep[st.ID] {
				return fmt.Errorf("%w: duplicate step %q", ErrInvalidCatalog, st.ID)
			}
			seenStep[st.ID] = true
		}
	}

	seenEmail := make(map[string]bool)
	for _, e := range c.employees {
		key := strings.ToLower(strings.TrimSpace(e.Email))
		if key == "" {
			return fmt.Errorf("%w: employee %q has no email", ErrInvalidCatalog, e.ID)
		}
		if seenEmail[key] {
			return fmt.Errorf("%w: duplicate employee email %q", ErrInvalidCatalog, e.Email)
		}
		seenEmail[key] = true
	}
	return nil
}

// Employees returns a copy of the roster.
func (c *Catalog) Employees() []model.Employee {
	return append([]model.Employee(nil), c.employees...)
}

// Categories returns a copy of the scenario categories.
func (c *Catalog) Categories() []model.ScenarioCategory {
	return append([]model.ScenarioCategory(nil), c.categories...)
}

// Scenarios returns all scenarios in catalog order. When category is non-empty
// only scenarios in that category are returned.
func (c *Catalog) Scenarios(category string) []model.TrainingScenario {
	out := make([]model.TrainingScenario, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		if category != "" && s.Category != category {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Scenario looks a scenario up by id.
func (c *Catalog) Scenario(id string) (model.TrainingScenario, bool) {
	i, ok := c.scenarioByID[id]
	if !ok {
		return model.TrainingScenario{}, false
	}
	return c.scenarios[i], true
}

// Steps returns the steps of a scenario ordered by Order.
func (c *Catalog) Steps(scenarioID string) []model.ScenarioStep {
	return append([]model.ScenarioStep(nil), c.stepsByID[scenarioID]...)
}

// SeedProgress returns progress records the store may be primed with.
func (c *Catalog) SeedProgress() []model.ProgressRecord {
	return append([]model.ProgressRecord(nil), c.progress...)
}
