package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/internal/infrastructure/storage/postgres"
)

func TestDamageRow_NullLocation(t *testing.T) {
	row := damageRow{
		Document:  entity.NewDocument(),
		ProductID: id.New(),
		Quantity:  3,
		Status:    damage.StatusPending,
	}

	d, err := row.toDomain()
	require.NoError(t, err)
	assert.Nil(t, d.Location)
	assert.Equal(t, row.ID, d.ID)
}

func TestDamageRow_ShopLocation(t *testing.T) {
	kind, shopID := location.KindShop, id.New()
	row := damageRow{
		Document:     entity.NewDocument(),
		ProductID:    id.New(),
		Quantity:     3,
		LocationType: &kind,
		LocationID:   &shopID,
		Status:       damage.StatusApproved,
	}

	d, err := row.toDomain()
	require.NoError(t, err)
	assert.True(t, location.Equal(location.Shop(shopID), d.Location))
}

func TestTransferRow_RejectsUnknownKind(t *testing.T) {
	row := transferRow{
		Document:        entity.NewDocument(),
		SourceType:      "depot",
		SourceID:        id.New(),
		DestinationType: location.KindShop,
		DestinationID:   id.New(),
		Status:          transfer.StatusCompleted,
	}

	_, err := row.toDomain(nil)
	assert.Error(t, err)

	row.SourceType = location.KindWarehouse
	tr, err := row.toDomain([]transfer.Item{{ProductID: id.New(), Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, location.KindWarehouse, tr.Source.Kind())
	assert.Len(t, tr.Items, 1)
}

func TestDamageRow_Columns(t *testing.T) {
	cols := postgres.ExtractDBColumns[damageRow]()
	assert.Contains(t, cols, "location_type")
	assert.Contains(t, cols, "location_id")
	assert.Contains(t, cols, "status")
	assert.Contains(t, cols, "date")
	assert.Contains(t, cols, "number")
}
