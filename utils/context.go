package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout bounds a single database round trip.
	DefaultTimeout = 5 * time.Second

	// ShortTimeout is for session cache lookups on the request path.
	ShortTimeout = 2 * time.Second
)

// WithTimeout creates a context with the default timeout.
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

// WithShortTimeout creates a context with the short timeout.
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}
