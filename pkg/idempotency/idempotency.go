// Package idempotency stores the outcome of requests carrying an
// Idempotency-Key so that retries observe the first response.
package idempotency

import (
	"context"
	"time"
)

// Record is the stored outcome of a request. A record with Done == false
// marks a request that is still being processed.
type Record struct {
	Done bool `json:"done"`
	// Fingerprint identifies the request that claimed the key. A retry with
	// a different fingerprint is a different request reusing the key.
	Fingerprint string `json:"fingerprint,omitempty"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Store keeps idempotency records.
type Store interface {
	// Reserve claims key for the request with the given fingerprint. It
	// returns false if the key is already claimed or completed.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (bool, error)
	// Get returns the record for key, or nil if there is none.
	Get(ctx context.Context, key string) (*Record, error)
	// Complete stores the final outcome for a reserved key.
	Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error
	// Release drops a reservation so the request can be retried.
	Release(ctx context.Context, key string) error
}
