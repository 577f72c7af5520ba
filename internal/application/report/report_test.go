package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/domain/alert"
	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/logger"
	"github.com/xiebiao/winestock/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/winestock/internal/testutil"
	"github.com/xiebiao/winestock/pkg/keylock"
)

type fixture struct {
	svc    *Service
	engine *ledger.Engine
	wines  inventory.WineRepository
	clock  *testutil.FixedClock
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	wines := gormdb.NewWineRepository(db)
	movements := gormdb.NewMovementRepository(db)
	clock := &testutil.FixedClock{T: time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)}
	engine := ledger.NewEngine(wines, movements, gormdb.NewTxManager(db), keylock.New(), clock, logger.NewNop())
	return &fixture{
		svc:    NewService(engine, wines, gormdb.NewShopRepository(db), clock),
		engine: engine,
		wines:  wines,
		clock:  clock,
	}
}

func (f *fixture) seed(t *testing.T) {
	ctx := context.Background()
	a := inventory.NewWine(testutil.WineDraft("A-1", 5), f.clock.Now())
	b := inventory.NewWine(testutil.WineDraft("B-1", 0), f.clock.Now())
	require.NoError(t, f.wines.Create(ctx, a))
	require.NoError(t, f.wines.Create(ctx, b))

	price := decimal.RequireFromString("30.00")
	drafts := []inventory.MovementDraft{
		{WineID: a.ID, Kind: inventory.KindPurchase, Quantity: 10},               // 10 × 12.50
		{WineID: a.ID, Kind: inventory.KindSale, Quantity: 7},                    // 7 × 25.00
		{WineID: b.ID, Kind: inventory.KindPurchase, Quantity: 2},                // 2 × 12.50
		{WineID: b.ID, Kind: inventory.KindSale, Quantity: 1, UnitPrice: &price}, // 1 × 30.00
	}
	for _, d := range drafts {
		f.clock.Advance(time.Minute)
		_, err := f.engine.RecordMovement(ctx, d)
		require.NoError(t, err)
	}
}

func TestMovementReport(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	full, err := f.svc.MovementReport(ctx, inventory.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, full.Rows, 4)
	assert.Equal(t, inventory.DefaultShopName, full.ShopName)
	assert.Equal(t, 20, full.TotalQuantity)
	// 125 + 175 + 25 + 30
	assert.Equal(t, "355.00", full.TotalAmount.StringFixed(2))

	for _, row := range full.Rows {
		expected := row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity)))
		assert.True(t, row.Subtotal.Equal(expected))
	}

	sales, err := f.svc.MovementReport(ctx, inventory.MovementFilter{Kind: inventory.KindSale})
	require.NoError(t, err)
	require.Len(t, sales.Rows, 2)
	assert.Equal(t, "B-1", sales.Rows[0].WineCode) // 最新的在前
	assert.Equal(t, "205.00", sales.TotalAmount.StringFixed(2))
	assert.Equal(t, "Sales", sales.Title())
}

func TestMovementReport_Filtered(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	// 种子流水时间为 12:01 到 12:04
	from := time.Date(2024, 6, 1, 12, 2, 0, 0, time.Local)
	to := time.Date(2024, 6, 1, 12, 4, 0, 0, time.Local)
	r, err := f.svc.MovementReport(ctx, inventory.MovementFilter{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, r.Rows, 2)
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.True(t, r.From.Equal(from))
	assert.True(t, r.To.Equal(to))
	assert.Equal(t, 9, r.TotalQuantity)

	byCode, err := f.svc.MovementReport(ctx, inventory.MovementFilter{WineCode: "b-"})
	require.NoError(t, err)
	require.Len(t, byCode.Rows, 2)
	for _, row := range byCode.Rows {
		assert.Equal(t, "B-1", row.WineCode)
	}
	assert.Nil(t, byCode.From)

	_, err = f.svc.MovementReport(ctx, inventory.MovementFilter{From: to, To: from})
	var verrs inventory.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "to", verrs[0].Field)
}

func TestStockSummary(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	summary, err := f.svc.StockSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Rows, 2)

	a := summary.Rows[0]
	assert.Equal(t, "A-1", a.Code)
	assert.Equal(t, 3, a.Balance)
	assert.Equal(t, alert.StatusLow, a.Status)
	assert.Equal(t, "75.00", a.StockValue.StringFixed(2))

	assert.Equal(t, 4, summary.TotalBottles)
	assert.Equal(t, "100.00", summary.TotalValue.StringFixed(2))
}

func TestWriteCSV(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	r, err := f.svc.MovementReport(context.Background(), inventory.MovementFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, r))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6) // 表头 + 4行 + 合计
	assert.Equal(t, r.Headings(), records[0])
	assert.Equal(t, "30.00", records[1][5])
	assert.Equal(t, "Total", records[5][0])
	assert.Equal(t, "20", records[5][4])
	assert.Equal(t, "355.00", records[5][6])
}

func TestWriteXLSX(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	summary, err := f.svc.StockSummary(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, summary))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Stock")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, "A-1", rows[1][0])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "100", rows[3][7])
}
