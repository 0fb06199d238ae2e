package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

func TestTransfer_Validate(t *testing.T) {
	ctx := context.Background()
	w := location.Warehouse(id.New())
	s := location.Shop(id.New())
	p := id.New()

	tests := []struct {
		name string
		tr   *Transfer
		code string
	}{
		{"ok", NewTransfer(w, s, []Item{{ProductID: p, Quantity: 1}}), ""},
		{"same location", NewTransfer(w, w, []Item{{ProductID: p, Quantity: 1}}), apperror.CodeSameLocation},
		{"no source", NewTransfer(nil, s, []Item{{ProductID: p, Quantity: 1}}), apperror.CodeValidation},
		{"no items", NewTransfer(w, s, nil), apperror.CodeValidation},
		{"zero quantity", NewTransfer(w, s, []Item{{ProductID: p, Quantity: 0}}), apperror.CodeValidation},
		{"nil product", NewTransfer(w, s, []Item{{Quantity: 2}}), apperror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tr.Validate(ctx)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestTransfer_SameIDDifferentKindIsAllowed(t *testing.T) {
	v := id.New()
	tr := NewTransfer(location.Warehouse(v), location.Shop(v), []Item{{ProductID: id.New(), Quantity: 1}})
	assert.NoError(t, tr.Validate(context.Background()))
}

func TestTransfer_Cancel(t *testing.T) {
	tr := NewTransfer(location.Warehouse(id.New()), location.Shop(id.New()), nil)
	require.Equal(t, StatusCompleted, tr.Status)

	require.NoError(t, tr.Cancel())
	assert.Equal(t, StatusCancelled, tr.Status)

	err := tr.Cancel()
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
}

func TestTransfer_MovementsConserveStock(t *testing.T) {
	p1, p2 := id.New(), id.New()
	tr := NewTransfer(location.Warehouse(id.New()), location.Shop(id.New()), []Item{
		{ProductID: p1, Quantity: 4},
		{ProductID: p2, Quantity: 7},
		{ProductID: p1, Quantity: 1},
	})

	assert.Equal(t, map[id.ID]int64{p1: 5, p2: 7}, tr.QuantityByProduct())
	assert.Equal(t, int64(5), tr.QuantityOf(p1))

	mv := tr.Movements()
	require.Len(t, mv, 6)
	assert.Zero(t, entity.FoldMovements(mv))
	for _, m := range mv {
		assert.Equal(t, tr.ID, m.RecorderID)
		assert.Equal(t, entity.RecorderTransfer, m.RecorderType)
	}
}
