package progression

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/shopfloor/internal/domain/dedupe"
	"github.com/okian/shopfloor/pkg/logger"
)

const defaultSubmitTimeout = 5 * time.Second

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeout bounds a single submission, provider calls included.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDeduper sets the submission guard. Sessions of the same employee should
// share one.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Session) {
		if d != nil {
			s.seen = d
		}
	}
}

// WithIDGenerator sets the response id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func defaultIDGenerator() string {
	return "resp-" + uuid.NewString()
}
