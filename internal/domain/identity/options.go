package identity

import (
	"time"

	"github.com/okian/shopfloor/pkg/logger"
)

// Option configures a Holder.
type Option func(*Holder)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Holder) {
		if l != nil {
			h.log = l
		}
	}
}

// WithKey overrides the key the current employee is stored under.
func WithKey(key string) Option {
	return func(h *Holder) {
		if key != "" {
			h.key = key
		}
	}
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithTTL sets how long issued tokens are valid.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithIssuerClock overrides the clock used for issuing and verifying.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}
