package repository

import (
	"github.com/okian/shopfloor/internal/domain/model"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithSeed preloads progress records. Scenario status is derived from each
// record: complete records are completed with their rounded average as last
// score, partially complete ones are in progress.
func WithSeed(records []model.ProgressRecord) Option {
	return func(s *MemoryStore) {
		s.seed = append(s.seed, records...)
	}
}

// WithResponseLimit caps the history kept per (employee, scenario). Zero or
// negative keeps everything.
func WithResponseLimit(n int) Option {
	return func(s *MemoryStore) {
		s.responseLimit = n
	}
}
