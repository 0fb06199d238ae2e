// Package idempotency defines the contract for replaying retried write requests.
//
// A client that got PARTIAL_FAILURE (or lost the response) may resend the same request
// with the same key: the stored response is replayed instead of running the write twice.
package idempotency

import (
	"context"
	"time"
)

// Status represents the state of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StaleAfter is how long a pending key may stay untouched before a retry reclaims it.
const StaleAfter = time.Minute

// Record stores the result of an idempotent operation.
type Record struct {
	Key         string    `db:"idempotency_key"`
	Operation   string    `db:"operation"`
	Status      Status    `db:"status"`
	RequestHash string    `db:"request_hash"` // SHA256 of request body
	Response    []byte    `db:"response"`
	StatusCode  int       `db:"response_status"`
	ContentType string    `db:"response_content_type"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	ExpiresAt   time.Time `db:"expires_at"`
}

// Replay is the cached HTTP response.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store manages idempotency keys.
type Store interface {
	// AcquireKey returns (nil, nil) when the caller now owns the key, a Replay when the
	// operation already finished, or an error when the key is busy or reused for a
	// different request.
	AcquireKey(ctx context.Context, key, operation, requestHash string) (*Replay, error)
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// ReplayOf turns a finished record into a Replay.
func ReplayOf(r *Record) *Replay {
	status := r.StatusCode
	if status == 0 {
		status = 200
	}
	ct := r.ContentType
	if ct == "" {
		ct = "application/json"
	}
	return &Replay{StatusCode: status, ContentType: ct, Body: r.Response}
}
