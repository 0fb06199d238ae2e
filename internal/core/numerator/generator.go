package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
type Generator interface {
	// GetNextNumber generates the next number of cfg's sequence for period.
	// opts may be nil.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber moves a sequence so that the next number is value+1.
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
