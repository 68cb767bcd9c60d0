package patterns

import (
	"context"
	"time"
)

// WithTimeout derives a context that fails fast after duration.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, duration)
}

// DefaultTimeout is the default timeout for HTTP requests
const DefaultTimeout = 3 * time.Second

// StoreTimeout bounds a single document store attempt
const StoreTimeout = 5 * time.Second
