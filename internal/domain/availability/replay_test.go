package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/domain/documents/transfer"
)

func TestReplay(t *testing.T) {
	originID := id.New()
	x := location.Warehouse(originID)
	y := location.Shop(id.New())
	z := location.Warehouse(id.New())

	// Opening 100 at X plus a purchase of 40 at Z. CountInStock is global.
	p := product.NewProduct("SKU-1", "Widget", originID, 140)
	other := id.New()

	tr := transfer.NewTransfer(x, y, []transfer.Item{
		{ProductID: p.ID, Quantity: 30},
		{ProductID: other, Quantity: 99},
	})
	cancelled := transfer.NewTransfer(x, y, []transfer.Item{{ProductID: p.ID, Quantity: 50}})
	cancelled.Status = transfer.StatusCancelled

	atY := damage.NewDamage(p.ID, y, 5, "")
	atY.Status = damage.StatusApproved
	atOrigin := damage.NewDamage(p.ID, nil, 2, "")
	atOrigin.Status = damage.StatusApproved
	pending := damage.NewDamage(p.ID, y, 8, "")

	atZ := purchase.NewPurchase(p.ID, z, 40)
	inactive := purchase.NewPurchase(p.ID, y, 11)
	inactive.IsActive = false

	sold := sale.NewSale(y, []sale.Item{{ProductID: p.ID, Quantity: 10}})

	// Counters after the two approved damages.
	p.CountInStock -= 7

	h := History{
		Purchases: []*purchase.Purchase{atZ, inactive},
		Transfers: []*transfer.Transfer{tr, cancelled},
		Damages:   []*damage.Damage{atY, atOrigin, pending},
		Sales:     []*sale.Sale{sold},
	}

	tests := []struct {
		name string
		loc  location.Ref
		want int64
	}{
		// 133 - 30 out + 5 (damage at Y compensated) - 40 (purchase at Z compensated)
		{"origin", x, 68},
		// 30 in - 5 damaged - 10 sold
		{"shop", y, 15},
		{"other warehouse", z, 40},
		{"unknown", location.Shop(id.New()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Replay(p, tt.loc, h))
		})
	}
}

func TestReplay_OversoldHistoryIsNegative(t *testing.T) {
	originID := id.New()
	shop := location.Shop(id.New())
	p := product.NewProduct("SKU-2", "Gadget", originID, 5)

	h := History{
		Transfers: []*transfer.Transfer{
			transfer.NewTransfer(location.Warehouse(originID), shop, []transfer.Item{{ProductID: p.ID, Quantity: 5}}),
		},
		Sales: []*sale.Sale{
			sale.NewSale(shop, []sale.Item{{ProductID: p.ID, Quantity: 8}}),
		},
	}

	assert.Equal(t, int64(-3), Replay(p, shop, h))
	assert.Equal(t, int64(0), Replay(p, location.Warehouse(originID), h))
}
