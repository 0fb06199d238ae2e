package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/app"
	"stockwise/internal/config"
	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/shop"
	"stockwise/internal/domain/catalogs/warehouse"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/internal/domain/guard"
	"stockwise/internal/domain/reports"
	"stockwise/pkg/logger"
)

type fixture struct {
	app  *app.App
	p    *product.Product
	x, y location.Ref
}

func setup(t *testing.T) (context.Context, fixture) {
	t.Helper()
	ctx := context.Background()

	a, err := app.New(ctx, &config.Config{
		App:          config.AppConfig{Env: "test", LogLevel: "error"},
		Database:     config.DatabaseConfig{Driver: config.DriverMemory},
		Availability: config.AvailabilityConfig{Mode: availability.ModeRegister, DamageAutoApprove: true},
		Reconcile:    config.ReconcileConfig{Interval: time.Minute},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	wh := warehouse.NewWarehouse("WH-1", "Central")
	sh := shop.NewShop("SH-1", "Corner")
	require.NoError(t, a.Locations.CreateWarehouse(ctx, wh))
	require.NoError(t, a.Locations.CreateShop(ctx, sh))

	p, err := a.Guard.RegisterProduct(ctx, guard.ProductRequest{
		Code: "SKU-1", Name: "Widget", OriginWarehouseID: wh.ID, OpeningStock: 100,
	})
	require.NoError(t, err)

	_, err = a.Guard.ValidateAndCreateTransfer(ctx, guard.TransferRequest{
		Source: wh.Ref(), Destination: sh.Ref(),
		Items: []transfer.Item{{ProductID: p.ID, Quantity: 30}},
	})
	require.NoError(t, err)
	_, err = a.Guard.ValidateAndCreateDamage(ctx, guard.DamageRequest{
		ProductID: p.ID, Location: sh.Ref(), Quantity: 4,
	})
	require.NoError(t, err)
	_, err = a.Guard.ValidateAndCreateSale(ctx, p.ID, sh.Ref(), 6)
	require.NoError(t, err)

	return ctx, fixture{app: a, p: p, x: wh.Ref(), y: sh.Ref()}
}

func TestStockTurnover_WithinPeriod(t *testing.T) {
	ctx, f := setup(t)
	now := time.Now().UTC()

	report, err := f.app.Reports.GetStockTurnover(ctx, reports.StockTurnoverFilter{
		FromDate: now.Add(-time.Hour),
		ToDate:   now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, report.Items, 2)

	wh, sh := report.Items[0], report.Items[1]
	assert.Equal(t, location.KeyOf(f.x), wh.Key(), "warehouses first")
	assert.Equal(t, "Central", wh.LocationName)
	assert.Equal(t, "SKU-1", wh.ProductCode)
	assert.Equal(t, int64(0), wh.Opening)
	assert.Equal(t, int64(100), wh.Receipt)
	assert.Equal(t, int64(30), wh.Expense)
	assert.Equal(t, int64(70), wh.Closing)

	assert.Equal(t, "Corner", sh.LocationName)
	assert.Equal(t, int64(30), sh.Receipt)
	assert.Equal(t, int64(10), sh.Expense)
	assert.Equal(t, int64(20), sh.Closing)

	assert.Equal(t, int64(130), report.TotalReceipt)
	assert.Equal(t, int64(40), report.TotalExpense)
	assert.Equal(t, int64(90), report.TotalClosing)
}

func TestStockTurnover_EarlierMovementsFormOpening(t *testing.T) {
	ctx, f := setup(t)
	now := time.Now().UTC()

	report, err := f.app.Reports.GetStockTurnover(ctx, reports.StockTurnoverFilter{
		FromDate: now.Add(time.Hour),
		ToDate:   now.Add(2 * time.Hour),
		Location: f.y,
	})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)

	item := report.Items[0]
	assert.Equal(t, int64(20), item.Opening)
	assert.Zero(t, item.Receipt)
	assert.Zero(t, item.Expense)
	assert.Equal(t, int64(20), item.Closing)
}

func TestStockTurnover_FiltersAndValidation(t *testing.T) {
	ctx, f := setup(t)
	now := time.Now().UTC()

	other := id.New()
	report, err := f.app.Reports.GetStockTurnover(ctx, reports.StockTurnoverFilter{
		FromDate:  now.Add(-time.Hour),
		ToDate:    now.Add(time.Hour),
		ProductID: &other,
	})
	require.NoError(t, err)
	assert.Empty(t, report.Items)

	before, err := f.app.Reports.GetStockTurnover(ctx, reports.StockTurnoverFilter{
		FromDate: now.Add(-2 * time.Hour),
		ToDate:   now.Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, before.Items, "movements after ToDate are excluded")

	_, err = f.app.Reports.GetStockTurnover(ctx, reports.StockTurnoverFilter{
		FromDate: now, ToDate: now.Add(-time.Hour),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.app.Reports.GetStockTurnover(ctx, reports.StockTurnoverFilter{ToDate: now})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.app.Reports.GetStockTurnover(ctx, reports.StockTurnoverFilter{
		FromDate: now.Add(-time.Hour), ToDate: now, Location: location.Shop(id.New()),
	})
	assert.True(t, apperror.IsNotFound(err))
}
