// Package numerator provides the contract for human-readable document numbers.
// Implementations live in the storage layers.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict takes the next value inside the caller's transaction.
	// Numbers are gapless: a rolled back document gives its number back.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges outside the transaction and hands them out from
	// memory. Restarts and rollbacks leave gaps.
	StrategyCached
)

// ParseStrategy reads the NUMBERING_STRATEGY setting.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return StrategyStrict, nil
	case "cached":
		return StrategyCached, nil
	}
	return StrategyStrict, apperror.NewValidation("numbering strategy must be strict or cached").
		WithDetail("value", s)
}

func (s Strategy) String() string {
	if s == StrategyCached {
		return "cached"
	}
	return "strict"
}

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values reserved at once by StrategyCached.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Reset periods.
const (
	ResetYear  = "year"
	ResetMonth = "month"
	ResetNever = "never"
)

// Config holds numbering configuration for one document type.
type Config struct {
	// Prefix added to all numbers (e.g., "TR", "SL")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	ResetPeriod string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: ResetYear,
	}
}

var prefixes = map[string]string{
	entity.RecorderPurchase: "PU",
	entity.RecorderTransfer: "TR",
	entity.RecorderDamage:   "DM",
	entity.RecorderSale:     "SL",
}

// ConfigFor returns the numbering of a ledger document type.
func ConfigFor(recorderType string) Config {
	prefix, ok := prefixes[recorderType]
	if !ok {
		prefix = strings.ToUpper(recorderType)
	}
	return DefaultConfig(prefix)
}

// Key is the sequence a number is drawn from.
func Key(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case ResetMonth:
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case ResetYear:
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// Format renders the n-th number of a sequence: PREFIX-YEAR-00042 or PREFIX-00042.
func Format(cfg Config, period time.Time, n int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, n)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, n)
}

// ParseNumber extracts the numeric part of a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	i := strings.LastIndexByte(formatted, '-')
	if i <= 0 {
		return -1
	}
	num, err := strconv.ParseInt(formatted[i+1:], 10, 64)
	if err != nil || num < 0 {
		return -1
	}
	return num
}
