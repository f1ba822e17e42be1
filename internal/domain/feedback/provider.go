// Package feedback defines the provider contract used to obtain a simulated
// customer reply and scored feedback for an employee response, plus the
// local heuristic implementation.
//
// A remote AI service can replace the local provider without changing
// callers: inputs are the step context and response text, outputs are a
// reply.Reply and a model.Feedback.
package feedback

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/reply"
	"github.com/okian/shopfloor/internal/domain/scoring"
)

// Default provider configuration constants.
const (
	defaultMinLatency = 500 * time.Millisecond
	defaultMaxLatency = 1000 * time.Millisecond
	defaultRandomSeed = 42
)

// Provider produces the customer's reply and the feedback for a response.
type Provider interface {
	// CustomerReply returns the simulated customer's next line.
	CustomerReply(ctx context.Context, step model.ScenarioStep, text string) (reply.Reply, error)

	// Evaluate scores the response. Implementations may block; they must
	// honor ctx and return an error wrapping ErrUnavailable when they give up.
	Evaluate(ctx context.Context, step model.ScenarioStep, text string) (model.Feedback, error)
}

// Option applies a configuration option to the LocalProvider.
type Option func(*LocalProvider)

// WithLatencyRange sets the simulated evaluation latency. A zero maximum
// disables the delay.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(p *LocalProvider) {
		if minLatency >= 0 && maxLatency >= minLatency {
			p.minLatency = minLatency
			p.maxLatency = maxLatency
		}
	}
}

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(p *LocalProvider) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithSimulator sets the reply simulator.
func WithSimulator(s *reply.Simulator) Option {
	return func(p *LocalProvider) {
		if s != nil {
			p.simulator = s
		}
	}
}

// WithSeed seeds the latency jitter.
func WithSeed(seed int64) Option {
	return func(p *LocalProvider) {
		p.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // jitter only
	}
}

// LocalProvider implements Provider with the heuristic scoring engine and
// reply simulator, optionally simulating the latency of a remote service.
type LocalProvider struct {
	engine    *scoring.Engine
	simulator *reply.Simulator

	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocalProvider creates a local provider with configuration options.
func NewLocalProvider(opts ...Option) *LocalProvider {
	p := &LocalProvider{
		engine:     scoring.NewEngine(),
		simulator:  reply.NewSimulator(),
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // jitter only
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CustomerReply returns the simulated customer line. It does not block.
func (p *LocalProvider) CustomerReply(ctx context.Context, step model.ScenarioStep, text string) (reply.Reply, error) {
	if err := ctx.Err(); err != nil {
		return reply.Reply{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return p.simulator.Reply(step, text), nil
}

// Evaluate waits for the simulated latency and scores the response.
func (p *LocalProvider) Evaluate(ctx context.Context, step model.ScenarioStep, text string) (model.Feedback, error) {
	if d := p.latency(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.Feedback{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return model.Feedback{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return p.engine.Evaluate(step, text), nil
}

func (p *LocalProvider) latency() time.Duration {
	if p.maxLatency <= 0 {
		return 0
	}
	spread := int64(p.maxLatency - p.minLatency)
	if spread <= 0 {
		return p.minLatency
	}
	p.mu.Lock()
	jitter := p.rng.Int63n(spread)
	p.mu.Unlock()
	return p.minLatency + time.Duration(jitter)
}
