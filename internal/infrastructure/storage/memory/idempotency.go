package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/idempotency"
)

var _ idempotency.Store = (*IdempotencyStore)(nil)

// IdempotencyStore keeps idempotency keys in a map. Keys live outside store
// transactions, like sys_idempotency rows written through the pool.
type IdempotencyStore struct {
	mu      sync.Mutex
	records map[string]*idempotency.Record
	ttl     time.Duration
	now     func() time.Time
}

// NewIdempotencyStore creates an empty key store.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		records: make(map[string]*idempotency.Record),
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AcquireKey implements idempotency.Store.
func (s *IdempotencyStore) AcquireKey(_ context.Context, key, operation, requestHash string) (*idempotency.Replay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if !ok || now.After(rec.ExpiresAt) {
		s.records[key] = &idempotency.Record{
			Key:         key,
			Operation:   operation,
			Status:      idempotency.StatusPending,
			RequestHash: requestHash,
			CreatedAt:   now,
			UpdatedAt:   now,
			ExpiresAt:   now.Add(s.ttl),
		}
		return nil, nil
	}

	if rec.Operation != operation || rec.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", rec.Operation).
			WithDetail("request_operation", operation)
	}

	switch rec.Status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		cp := *rec
		return idempotency.ReplayOf(&cp), nil
	}

	if now.Sub(rec.UpdatedAt) <= idempotency.StaleAfter {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	rec.UpdatedAt = now
	return nil, nil
}

// CompleteKey implements idempotency.Store.
func (s *IdempotencyStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(key, idempotency.StatusSuccess, statusCode, contentType, response)
}

// FailKey implements idempotency.Store.
func (s *IdempotencyStore) FailKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(key, idempotency.StatusFailed, statusCode, contentType, response)
}

func (s *IdempotencyStore) finish(key string, status idempotency.Status, statusCode int, contentType string, response any) error {
	var body []byte
	if response != nil {
		b, err := json.Marshal(response)
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		body = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	rec.Status = status
	rec.Response = body
	rec.StatusCode = statusCode
	rec.ContentType = contentType
	rec.UpdatedAt = s.now()
	return nil
}

// CleanupExpired implements idempotency.Store.
func (s *IdempotencyStore) CleanupExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for k, rec := range s.records {
		if rec.ExpiresAt.Before(now) {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}
