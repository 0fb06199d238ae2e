package entity

import (
	"context"
	"time"

	"stockwise/internal/core/apperror"
)

// Document is the base type for ledger events: purchases, transfers, damages, sales.
// Documents are appended once; only their status (or active flag) changes afterwards.
type Document struct {
	BaseEntity

	// Number is the human-readable document number, assigned on posting
	Number string `db:"number" json:"number"`

	// Date is the business date of the event
	Date time.Time `db:"date" json:"date"`

	// Comment is an optional free-text note
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document dated now.
func NewDocument() Document {
	base := NewBaseEntity()
	return Document{
		BaseEntity: base,
		Date:       base.CreatedAt,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
