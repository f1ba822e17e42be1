package service

import (
	"time"

	"github.com/okian/shopfloor/internal/adapters/kv"
	"github.com/okian/shopfloor/internal/domain/catalog"
	"github.com/okian/shopfloor/internal/domain/feedback"
	"github.com/okian/shopfloor/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithSessionStore sets where the signed-in employee is persisted.
func WithSessionStore(store kv.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.kv = store
		}
	}
}

// WithProvider replaces the local feedback provider.
func WithProvider(p feedback.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSigningKey sets the key used to sign bearer tokens.
func WithSigningKey(secret string) Option {
	return func(s *Service) {
		if secret != "" {
			s.signingKey = secret
		}
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithSubmitTimeout bounds one submission end to end.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.submitTimeout = d
		}
	}
}

// WithMaxResponseChars caps the length of a submitted response.
func WithMaxResponseChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResponseChars = n
		}
	}
}

// WithDemoProgress primes the store with the catalog's demo progress.
func WithDemoProgress(enabled bool) Option {
	return func(s *Service) {
		s.seedDemo = enabled
	}
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
