package damage

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

func TestDamage_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		action func(*Damage) error
		want   Status
		ok     bool
	}{
		{"approve pending", StatusPending, (*Damage).Approve, StatusApproved, true},
		{"reject pending", StatusPending, (*Damage).Reject, StatusRejected, true},
		{"approve approved", StatusApproved, (*Damage).Approve, StatusApproved, false},
		{"reject approved", StatusApproved, (*Damage).Reject, StatusApproved, false},
		{"approve rejected", StatusRejected, (*Damage).Approve, StatusRejected, false},
		{"reject rejected", StatusRejected, (*Damage).Reject, StatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDamage(id.New(), nil, 1, "broken")
			d.Status = tt.from

			err := tt.action(d)
			if tt.ok {
				require.NoError(t, err)
			} else {
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
			}
			assert.Equal(t, tt.want, d.Status)
		})
	}
}

func TestDamage_Validate(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewDamage(id.New(), nil, 3, "").Validate(ctx))
	assert.Error(t, NewDamage(id.Nil(), nil, 3, "").Validate(ctx))
	assert.Error(t, NewDamage(id.New(), nil, 0, "").Validate(ctx))
	assert.Error(t, NewDamage(id.New(), nil, -2, "").Validate(ctx))
}

func TestDamage_EffectiveLocation(t *testing.T) {
	origin := location.Warehouse(id.New())
	shop := location.Shop(id.New())

	unattributed := NewDamage(id.New(), nil, 5, "")
	assert.True(t, location.Equal(origin, unattributed.EffectiveLocation(origin)))

	atShop := NewDamage(id.New(), shop, 5, "")
	assert.True(t, location.Equal(shop, atShop.EffectiveLocation(origin)))

	mv := unattributed.Movements(origin)
	require.Len(t, mv, 1)
	assert.Equal(t, entity.RecordTypeExpense, mv[0].RecordType)
	assert.Equal(t, location.KindWarehouse, mv[0].LocationType)
	assert.Equal(t, int64(-5), mv[0].SignedQuantity())
}
