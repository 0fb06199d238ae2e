package guard_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/internal/domain/guard"
)

func TestGuard_StockFlow(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEnv(t, mode, true)
			p := e.product(t, "SKU-1", 100)

			_, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
				Source:      e.X,
				Destination: e.Y,
				Items:       []transfer.Item{{ProductID: p.ID, Quantity: 30}},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(70), e.stockAt(t, p.ID, e.X))
			assert.Equal(t, int64(30), e.stockAt(t, p.ID, e.Y))

			_, err = e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.Y, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(20), e.stockAt(t, p.ID, e.Y))

			d, err := e.guard.ValidateAndCreateDamage(e.ctx, guard.DamageRequest{
				ProductID: p.ID,
				Location:  e.Y,
				Quantity:  5,
				Reason:    "dropped",
			})
			require.NoError(t, err)
			assert.Equal(t, damage.StatusApproved, d.Status)
			assert.Equal(t, int64(15), e.stockAt(t, p.ID, e.Y))
			assert.Equal(t, int64(70), e.stockAt(t, p.ID, e.X))

			c := e.counters(t, p.ID)
			assert.Equal(t, int64(95), c.CountInStock)
			assert.Equal(t, int64(5), c.DamagedQuantity)
			assert.Equal(t, int64(10), c.SoldOutQuantity)

			listed, err := e.avail.LocationsWithStock(e.ctx, p.ID)
			require.NoError(t, err)
			require.Len(t, listed, 2)
			assert.True(t, location.Equal(e.X, listed[0].Ref()), "origin first")
			assert.Equal(t, int64(70), listed[0].Stock)
			assert.Equal(t, "Central", listed[0].Name)
			assert.True(t, location.Equal(e.Y, listed[1].Ref()))
			assert.Equal(t, int64(15), listed[1].Stock)
		})
	}
}

func TestGuard_StockFlowSequences(t *testing.T) {
	type step struct {
		op       string // "damage" or "sale"
		quantity int64
		wantY    int64
	}

	tests := []struct {
		name    string
		steps   []step
		damaged int64
		sold    int64
	}{
		{
			name:  "damage then sale",
			steps: []step{
				{op: "damage", quantity: 10, wantY: 20},
				{op: "sale", quantity: 5, wantY: 15},
			},
			damaged: 10,
			sold:    5,
		},
		{
			name:  "sale then damage",
			steps: []step{
				{op: "sale", quantity: 10, wantY: 20},
				{op: "damage", quantity: 5, wantY: 15},
			},
			damaged: 5,
			sold:    10,
		},
	}

	for _, mode := range modes {
		for _, tt := range tests {
			t.Run(string(mode)+"/"+tt.name, func(t *testing.T) {
				e := newEnv(t, mode, true)
				p := e.product(t, "SKU-1", 100)

				_, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
					Source:      e.X,
					Destination: e.Y,
					Items:       []transfer.Item{{ProductID: p.ID, Quantity: 30}},
				})
				require.NoError(t, err)
				assert.Equal(t, int64(70), e.stockAt(t, p.ID, e.X))
				assert.Equal(t, int64(30), e.stockAt(t, p.ID, e.Y))

				for _, st := range tt.steps {
					switch st.op {
					case "damage":
						d, err := e.guard.ValidateAndCreateDamage(e.ctx, guard.DamageRequest{
							ProductID: p.ID,
							Location:  e.Y,
							Quantity:  st.quantity,
						})
						require.NoError(t, err)
						assert.Equal(t, damage.StatusApproved, d.Status)
					case "sale":
						_, err := e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.Y, st.quantity)
						require.NoError(t, err)
					}
					assert.Equal(t, st.wantY, e.stockAt(t, p.ID, e.Y), "after %s of %d", st.op, st.quantity)
					assert.Equal(t, int64(70), e.stockAt(t, p.ID, e.X), "origin unchanged after %s", st.op)
				}

				c := e.counters(t, p.ID)
				assert.Equal(t, 100-tt.damaged, c.CountInStock)
				assert.Equal(t, tt.damaged, c.DamagedQuantity)
				assert.Equal(t, tt.sold, c.SoldOutQuantity)

				_, err = e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
					Source:      e.Y,
					Destination: e.Z,
					Items:       []transfer.Item{{ProductID: p.ID, Quantity: 50}},
				})
				require.Error(t, err)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
				assert.Equal(t, int64(50), appErr.Details["requested"])
				assert.Equal(t, int64(15), appErr.Details["available"])

				suggestions, ok := appErr.Details["suggestions"].([]availability.LocationStock)
				require.True(t, ok)
				require.Len(t, suggestions, 1)
				assert.True(t, location.Equal(e.X, suggestions[0].Ref()))
				assert.Equal(t, int64(70), suggestions[0].Stock)
			})
		}
	}
}

func TestGuard_InsufficientStockSuggestsAlternatives(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEnv(t, mode, true)
			p := e.product(t, "SKU-1", 100)

			_, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
				Source:      e.X,
				Destination: e.Y,
				Items:       []transfer.Item{{ProductID: p.ID, Quantity: 30}},
			})
			require.NoError(t, err)

			before, err := e.repos.Stock.ListBalances(e.ctx)
			require.NoError(t, err)

			_, err = e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
				Source:      e.Y,
				Destination: e.Z,
				Items:       []transfer.Item{{ProductID: p.ID, Quantity: 50}},
			})
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
			assert.Equal(t, int64(50), appErr.Details["requested"])
			assert.Equal(t, int64(30), appErr.Details["available"])

			suggestions, ok := appErr.Details["suggestions"].([]availability.LocationStock)
			require.True(t, ok)
			require.Len(t, suggestions, 1)
			assert.True(t, location.Equal(e.X, suggestions[0].Ref()))
			assert.Equal(t, int64(70), suggestions[0].Stock)

			after, err := e.repos.Stock.ListBalances(e.ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after, "rejected transfer must not touch balances")

			transfers, err := e.repos.Transfers.ListByProduct(e.ctx, p.ID)
			require.NoError(t, err)
			assert.Len(t, transfers, 1)
			assert.Equal(t, 1, e.metrics.rejected[guard.OpCreateTransfer+"/"+apperror.CodeInsufficientStock])
		})
	}
}

func TestGuard_SaleLinesOfSameProductAreSummed(t *testing.T) {
	e := newEnv(t, availability.ModeRegister, true)
	p := e.product(t, "SKU-1", 100)

	_, err := e.guard.CreateSale(e.ctx, guard.SaleRequest{
		Location: e.X,
		Items: []sale.Item{
			{ProductID: p.ID, Quantity: 60, UnitPrice: decimal.RequireFromString("9.99")},
			{ProductID: p.ID, Quantity: 50, UnitPrice: decimal.RequireFromString("9.99")},
		},
	})
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, int64(100), e.stockAt(t, p.ID, e.X))

	sl, err := e.guard.CreateSale(e.ctx, guard.SaleRequest{
		Location: e.X,
		Items: []sale.Item{
			{ProductID: p.ID, Quantity: 60},
			{ProductID: p.ID, Quantity: 40},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.stockAt(t, p.ID, e.X))
	assert.Equal(t, 2, e.movementCount(t, sl.ID))
}

func TestGuard_MultiProductTransferIsAllOrNothing(t *testing.T) {
	e := newEnv(t, availability.ModeRegister, true)
	a := e.product(t, "A", 10)
	b := e.product(t, "B", 3)

	_, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
		Source:      e.X,
		Destination: e.Y,
		Items: []transfer.Item{
			{ProductID: a.ID, Quantity: 5},
			{ProductID: b.ID, Quantity: 4},
		},
	})
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, int64(10), e.stockAt(t, a.ID, e.X))
	assert.Equal(t, int64(0), e.stockAt(t, a.ID, e.Y))
}

func TestGuard_Validation(t *testing.T) {
	e := newEnv(t, availability.ModeRegister, true)
	p := e.product(t, "SKU-1", 10)

	tests := []struct {
		name string
		call func() error
		code string
	}{
		{"same source and destination", func() error {
			_, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
				Source: e.X, Destination: e.X,
				Items: []transfer.Item{{ProductID: p.ID, Quantity: 1}},
			})
			return err
		}, apperror.CodeSameLocation},
		{"unknown shop", func() error {
			_, err := e.guard.ValidateAndCreateSale(e.ctx, p.ID, location.Shop(id.New()), 1)
			return err
		}, apperror.CodeNotFound},
		{"warehouse id used as shop", func() error {
			_, err := e.guard.ValidateAndCreateSale(e.ctx, p.ID, location.Shop(e.X.ID()), 1)
			return err
		}, apperror.CodeNotFound},
		{"unknown product", func() error {
			_, err := e.guard.ValidateAndCreateSale(e.ctx, id.New(), e.X, 1)
			return err
		}, apperror.CodeNotFound},
		{"zero quantity", func() error {
			_, err := e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.X, 0)
			return err
		}, apperror.CodeValidation},
		{"negative damage", func() error {
			_, err := e.guard.ValidateAndCreateDamage(e.ctx, guard.DamageRequest{ProductID: p.ID, Quantity: -1})
			return err
		}, apperror.CodeValidation},
		{"unknown origin warehouse", func() error {
			_, err := e.guard.RegisterProduct(e.ctx, guard.ProductRequest{
				Code: "NEW", Name: "New", OriginWarehouseID: id.New(),
			})
			return err
		}, apperror.CodeNotFound},
		{"duplicate product code", func() error {
			_, err := e.guard.RegisterProduct(e.ctx, guard.ProductRequest{
				Code: "sku-1", Name: "Again", OriginWarehouseID: e.X.ID(),
			})
			return err
		}, apperror.CodeDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestGuard_DamageApproval(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEnv(t, mode, false)
			p := e.product(t, "SKU-1", 50)

			d, err := e.guard.ValidateAndCreateDamage(e.ctx, guard.DamageRequest{
				ProductID: p.ID,
				Quantity:  20,
			})
			require.NoError(t, err)
			assert.Equal(t, damage.StatusPending, d.Status)
			assert.Equal(t, int64(50), e.stockAt(t, p.ID, e.X), "pending damage has no effect")
			assert.Zero(t, e.movementCount(t, d.ID))

			// Stock drops below the pending quantity before approval.
			_, err = e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.X, 40)
			require.NoError(t, err)

			_, err = e.guard.ApproveDamage(e.ctx, d.ID)
			assert.True(t, apperror.IsInsufficientStock(err))

			rejected, err := e.guard.RejectDamage(e.ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, damage.StatusRejected, rejected.Status)

			_, err = e.guard.ApproveDamage(e.ctx, d.ID)
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

			d2, err := e.guard.ValidateAndCreateDamage(e.ctx, guard.DamageRequest{
				ProductID: p.ID,
				Quantity:  4,
			})
			require.NoError(t, err)
			approved, err := e.guard.ApproveDamage(e.ctx, d2.ID)
			require.NoError(t, err)
			assert.Equal(t, damage.StatusApproved, approved.Status)
			assert.Equal(t, int64(6), e.stockAt(t, p.ID, e.X))
			assert.Equal(t, int64(46), e.counters(t, p.ID).CountInStock)

			_, err = e.guard.RejectDamage(e.ctx, d2.ID)
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

			_, err = e.guard.ApproveDamage(e.ctx, id.New())
			assert.True(t, apperror.IsNotFound(err))
		})
	}
}

func TestGuard_DamageAtShopCompensatesOrigin(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEnv(t, mode, true)
			p := e.product(t, "SKU-1", 100)

			_, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
				Source: e.X, Destination: e.Y,
				Items: []transfer.Item{{ProductID: p.ID, Quantity: 30}},
			})
			require.NoError(t, err)

			_, err = e.guard.ValidateAndCreateDamage(e.ctx, guard.DamageRequest{
				ProductID: p.ID, Location: e.Y, Quantity: 12,
			})
			require.NoError(t, err)

			// CountInStock dropped by 12 but the origin did not.
			assert.Equal(t, int64(88), e.counters(t, p.ID).CountInStock)
			assert.Equal(t, int64(70), e.stockAt(t, p.ID, e.X))
			assert.Equal(t, int64(18), e.stockAt(t, p.ID, e.Y))
		})
	}
}

func TestGuard_CancelTransfer(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEnv(t, mode, true)
			p := e.product(t, "SKU-1", 100)

			tr, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
				Source: e.X, Destination: e.Y,
				Items: []transfer.Item{{ProductID: p.ID, Quantity: 30}},
			})
			require.NoError(t, err)

			_, err = e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.Y, 25)
			require.NoError(t, err)

			_, err = e.guard.CancelTransfer(e.ctx, tr.ID)
			assert.True(t, apperror.IsInsufficientStock(err), "destination no longer holds the units")

			tr2, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
				Source: e.X, Destination: e.Z,
				Items: []transfer.Item{{ProductID: p.ID, Quantity: 10}},
			})
			require.NoError(t, err)

			cancelled, err := e.guard.CancelTransfer(e.ctx, tr2.ID)
			require.NoError(t, err)
			assert.Equal(t, transfer.StatusCancelled, cancelled.Status)
			assert.Equal(t, int64(70), e.stockAt(t, p.ID, e.X))
			assert.Equal(t, int64(0), e.stockAt(t, p.ID, e.Z))
			assert.Equal(t, 4, e.movementCount(t, tr2.ID))

			_, err = e.guard.CancelTransfer(e.ctx, tr2.ID)
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
		})
	}
}

func TestGuard_PurchaseLifecycle(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEnv(t, mode, true)
			p := e.product(t, "SKU-1", 100)

			pu, err := e.guard.RecordPurchase(e.ctx, guard.PurchaseRequest{
				ProductID: p.ID,
				Location:  e.Z,
				Quantity:  40,
				UnitCost:  decimal.RequireFromString("2.50"),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(40), e.stockAt(t, p.ID, e.Z))
			assert.Equal(t, int64(100), e.stockAt(t, p.ID, e.X), "purchase elsewhere does not inflate origin")
			assert.Equal(t, int64(140), e.counters(t, p.ID).CountInStock)

			_, err = e.guard.DeactivatePurchase(e.ctx, pu.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), e.stockAt(t, p.ID, e.Z))
			assert.Equal(t, int64(100), e.counters(t, p.ID).CountInStock)

			_, err = e.guard.DeactivatePurchase(e.ctx, pu.ID)
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

			atShop, err := e.guard.RecordPurchase(e.ctx, guard.PurchaseRequest{
				ProductID: p.ID, Location: e.Y, Quantity: 10,
			})
			require.NoError(t, err)
			_, err = e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.Y, 6)
			require.NoError(t, err)

			_, err = e.guard.DeactivatePurchase(e.ctx, atShop.ID)
			assert.True(t, apperror.IsInsufficientStock(err))
			assert.Equal(t, int64(4), e.stockAt(t, p.ID, e.Y))
		})
	}
}

func TestGuard_DocumentNumbers(t *testing.T) {
	e := newEnv(t, availability.ModeRegister, true)
	p := e.product(t, "SKU-1", 100)

	tr1, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
		Source: e.X, Destination: e.Y,
		Items: []transfer.Item{{ProductID: p.ID, Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^TR-\d{4}-00001$`, tr1.Number)

	// a rejected transfer does not burn a number
	_, err = e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
		Source: e.Y, Destination: e.Z,
		Items: []transfer.Item{{ProductID: p.ID, Quantity: 500}},
	})
	require.Error(t, err)

	tr2, err := e.guard.ValidateAndCreateTransfer(e.ctx, guard.TransferRequest{
		Source: e.X, Destination: e.Y,
		Items: []transfer.Item{{ProductID: p.ID, Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^TR-\d{4}-00002$`, tr2.Number)

	sl, err := e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.Y, 1)
	require.NoError(t, err)
	assert.Regexp(t, `^SL-\d{4}-00001$`, sl.Number)

	d, err := e.guard.ValidateAndCreateDamage(e.ctx, guard.DamageRequest{ProductID: p.ID, Quantity: 1, Reason: "torn"})
	require.NoError(t, err)
	assert.Regexp(t, `^DM-\d{4}-00001$`, d.Number)

	pu, err := e.guard.RecordPurchase(e.ctx, guard.PurchaseRequest{ProductID: p.ID, Location: e.Z, Quantity: 5})
	require.NoError(t, err)
	assert.Regexp(t, `^PU-\d{4}-00001$`, pu.Number)

	stored, err := e.repos.Transfers.GetByID(e.ctx, tr1.ID)
	require.NoError(t, err)
	assert.Equal(t, tr1.Number, stored.Number)
}

func TestGuard_ConcurrentSalesNeverOversell(t *testing.T) {
	e := newEnv(t, availability.ModeRegister, true)
	p := e.product(t, "SKU-1", 100)

	const workers = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.X, 10)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case apperror.IsInsufficientStock(err):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, accepted)
	assert.Equal(t, workers-10, rejected)

	raw, err := e.repos.Stock.SumMovements(e.ctx, e.X, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), raw)
}

func TestGuard_CommitFailureIsPartialFailure(t *testing.T) {
	e := newEnv(t, availability.ModeRegister, true)
	p := e.product(t, "SKU-1", 100)

	e.store.FailCommit = func() error { return errors.New("connection lost during commit") }
	_, err := e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.X, 10)
	e.store.FailCommit = nil

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePartialFailure))
	assert.Equal(t, 1, e.metrics.partial[guard.OpCreateSale])

	// The writes landed; the caller must reconcile rather than retry blindly.
	assert.Equal(t, int64(90), e.stockAt(t, p.ID, e.X))
}

func TestAvailability_ClampsNegativeBalances(t *testing.T) {
	e := newEnv(t, availability.ModeRegister, true)
	p := e.product(t, "SKU-1", 5)

	require.NoError(t, e.repos.Stock.SetBalance(e.ctx, e.Y, p.ID, -3))

	assert.Equal(t, int64(0), e.stockAt(t, p.ID, e.Y))
	assert.Equal(t, int64(3), e.metrics.oversold)

	_, err := e.guard.ValidateAndCreateSale(e.ctx, p.ID, e.Y, 1)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestAvailability_ReadsDoNotWrite(t *testing.T) {
	e := newEnv(t, availability.ModeRegister, true)
	p := e.product(t, "SKU-1", 12)

	before, err := e.repos.Stock.FoldAll(e.ctx)
	require.NoError(t, err)

	first := e.stockAt(t, p.ID, e.X)
	second := e.stockAt(t, p.ID, e.X)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(0), e.stockAt(t, p.ID, e.Z))

	after, err := e.repos.Stock.FoldAll(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
