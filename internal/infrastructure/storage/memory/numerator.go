package memory

import (
	"context"
	"time"

	"stockwise/internal/core/numerator"
)

// Numerator implements numerator.Generator over the store's sequences. Every
// strategy behaves as strict: numbers roll back with the caller's transaction.
type Numerator struct {
	s *Store
}

var _ numerator.Generator = (*Numerator)(nil)

// Numerator returns a document numbering generator bound to the store.
func (s *Store) Numerator() *Numerator {
	return &Numerator{s: s}
}

// GetNextNumber implements numerator.Generator.
func (n *Numerator) GetNextNumber(ctx context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	key := numerator.Key(cfg, period)
	var next int64
	err := n.s.do(ctx, func(st *state) error {
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return numerator.Format(cfg, period, next), nil
}

// SetNextNumber implements numerator.Generator.
func (n *Numerator) SetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time, value int64) error {
	key := numerator.Key(cfg, period)
	return n.s.do(ctx, func(st *state) error {
		st.sequences[key] = value
		return nil
	})
}
