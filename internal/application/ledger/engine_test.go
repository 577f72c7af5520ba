package ledger

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/logger"
	"github.com/xiebiao/winestock/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/winestock/internal/testutil"
	apperrors "github.com/xiebiao/winestock/pkg/errors"
	"github.com/xiebiao/winestock/pkg/keylock"
)

type fixture struct {
	engine    *Engine
	wines     inventory.WineRepository
	movements inventory.MovementRepository
	uow       inventory.UnitOfWork
	clock     *testutil.FixedClock
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	f := &fixture{
		wines:     gormdb.NewWineRepository(db),
		movements: gormdb.NewMovementRepository(db),
		uow:       gormdb.NewTxManager(db),
		clock:     &testutil.FixedClock{T: time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)},
	}
	f.engine = NewEngine(f.wines, f.movements, f.uow, keylock.New(), f.clock, logger.NewNop())
	return f
}

func (f *fixture) createWine(t *testing.T, code string, threshold int) *inventory.Wine {
	w := inventory.NewWine(testutil.WineDraft(code, threshold), f.clock.Now())
	require.NoError(t, f.wines.Create(context.Background(), w))
	return w
}

func (f *fixture) record(t *testing.T, wineID uint, kind inventory.Kind, qty int) (*inventory.Movement, error) {
	t.Helper()
	f.clock.Advance(time.Second)
	return f.engine.RecordMovement(context.Background(), inventory.MovementDraft{WineID: wineID, Kind: kind, Quantity: qty})
}

func (f *fixture) balance(t *testing.T, wineID uint) int {
	t.Helper()
	b, err := f.engine.BalanceOf(context.Background(), wineID)
	require.NoError(t, err)
	return b
}

func TestRecordMovement_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createWine(t, "A-001", 5)

	_, err := f.record(t, a.ID, inventory.KindPurchase, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, f.balance(t, a.ID))

	_, err = f.record(t, a.ID, inventory.KindSale, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, f.balance(t, a.ID))

	below, err := f.engine.ListBelowThreshold(ctx)
	require.NoError(t, err)
	require.Len(t, below, 1)
	assert.Equal(t, a.ID, below[0].Wine.ID)
	assert.Equal(t, 3, below[0].Balance)
	assert.Equal(t, 5, below[0].Threshold)

	_, err = f.record(t, a.ID, inventory.KindSale, 5)
	var ins *inventory.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, 5, ins.Requested)
	assert.Equal(t, 3, ins.Available)
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, apperrors.CodeOf(err))
	assert.Equal(t, 3, f.balance(t, a.ID))

	history, err := f.engine.MovementHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRecordMovement_DefaultAndExplicitPrice(t *testing.T) {
	f := newFixture(t)
	w := f.createWine(t, "PRICE-1", 0)

	purchase, err := f.record(t, w.ID, inventory.KindPurchase, 6)
	require.NoError(t, err)
	assert.True(t, purchase.UnitPriceAtTime.Equal(w.PurchasePrice))

	sale, err := f.record(t, w.ID, inventory.KindSale, 1)
	require.NoError(t, err)
	assert.True(t, sale.UnitPriceAtTime.Equal(w.UnitPrice))

	discount := decimal.RequireFromString("19.90")
	f.clock.Advance(time.Second)
	promo, err := f.engine.RecordMovement(context.Background(), inventory.MovementDraft{
		WineID: w.ID, Kind: inventory.KindSale, Quantity: 2, UnitPrice: &discount, Note: "promo",
	})
	require.NoError(t, err)
	assert.True(t, promo.UnitPriceAtTime.Equal(discount))
	assert.Equal(t, "promo", promo.Note)
	assert.Equal(t, "39.8", promo.Subtotal().String())
}

func TestRecordMovement_TimestampsNeverGoBackwards(t *testing.T) {
	f := newFixture(t)
	w := f.createWine(t, "TS-1", 0)

	first, err := f.record(t, w.ID, inventory.KindPurchase, 1)
	require.NoError(t, err)

	// 系统时钟回拨
	f.clock.Advance(-time.Hour)
	second, err := f.engine.RecordMovement(context.Background(), inventory.MovementDraft{WineID: w.ID, Kind: inventory.KindPurchase, Quantity: 1})
	require.NoError(t, err)

	assert.False(t, second.CreatedAt.Before(first.CreatedAt))

	history, err := f.engine.MovementHistory(context.Background(), w.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
}

func TestRecordMovement_TimestampsPerWine(t *testing.T) {
	f := newFixture(t)
	a := f.createWine(t, "TS-A", 0)
	b := f.createWine(t, "TS-B", 0)

	f.clock.Advance(time.Hour)
	later, err := f.record(t, a.ID, inventory.KindPurchase, 1)
	require.NoError(t, err)

	// 另一酒款的流水不受其他酒款时间影响
	f.clock.Advance(-30 * time.Minute)
	earlier, err := f.record(t, b.ID, inventory.KindPurchase, 1)
	require.NoError(t, err)
	assert.True(t, earlier.CreatedAt.Before(later.CreatedAt))
	assert.True(t, earlier.CreatedAt.Equal(f.clock.Now().Truncate(time.Second)))

	// 同一酒款仍然单调不减
	again, err := f.record(t, a.ID, inventory.KindPurchase, 1)
	require.NoError(t, err)
	assert.True(t, again.CreatedAt.Equal(later.CreatedAt))
}

func TestRecordMovement_SumInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.createWine(t, "SUM-1", 0)
	rng := rand.New(rand.NewSource(42))

	expected := 0
	for i := 0; i < 60; i++ {
		kind := inventory.KindPurchase
		if rng.Intn(2) == 0 {
			kind = inventory.KindSale
		}
		qty := rng.Intn(8) + 1

		_, err := f.record(t, w.ID, kind, qty)
		switch {
		case kind == inventory.KindSale && qty > expected:
			var ins *inventory.InsufficientStockError
			require.ErrorAs(t, err, &ins)
		default:
			require.NoError(t, err)
			expected += kind.Sign() * qty
		}

		require.Equal(t, expected, f.balance(t, w.ID), "step %d", i)
		require.GreaterOrEqual(t, expected, 0)
	}

	check, err := f.engine.Verify(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, expected, check.Recomputed)
}

func TestRecordMovement_ConcurrentSales(t *testing.T) {
	f := newFixture(t)
	w := f.createWine(t, "RACE-1", 0)
	_, err := f.record(t, w.ID, inventory.KindPurchase, 2)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.RecordMovement(context.Background(), inventory.MovementDraft{
				WineID: w.ID, Kind: inventory.KindSale, Quantity: 2,
			})
		}(i)
	}
	wg.Wait()

	succeeded, insufficient := 0, 0
	for _, err := range errs {
		var ins *inventory.InsufficientStockError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &ins):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 0, f.balance(t, w.ID))
}

func TestRecordMovement_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("酒款不存在", func(t *testing.T) {
		_, err := f.record(t, 404, inventory.KindPurchase, 1)
		var nf *inventory.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, apperrors.ErrCodeWineNotFound, apperrors.CodeOf(err))
	})

	t.Run("已下架", func(t *testing.T) {
		w := f.createWine(t, "RET-1", 0)
		require.NoError(t, f.engine.RetireWine(ctx, w.ID))

		_, err := f.record(t, w.ID, inventory.KindPurchase, 1)
		var ce *inventory.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, inventory.ReasonRetired, ce.Reason)
	})

	t.Run("非法输入", func(t *testing.T) {
		_, err := f.engine.RecordMovement(ctx, inventory.MovementDraft{Kind: "gift", Quantity: 0})
		var ves inventory.ValidationErrors
		require.ErrorAs(t, err, &ves)
		assert.True(t, ves.Has("wine_id"))
		assert.True(t, ves.Has("kind"))
		assert.True(t, ves.Has("quantity"))
	})
}

func TestRecordMovement_Bounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.createWine(t, "BIG-1", 3)

	t.Run("单笔数量超过上限", func(t *testing.T) {
		_, err := f.record(t, w.ID, inventory.KindPurchase, math.MaxInt)
		var ves inventory.ValidationErrors
		require.ErrorAs(t, err, &ves)
		assert.True(t, ves.Has("quantity"))

		_, err = f.record(t, w.ID, inventory.KindPurchase, inventory.MaxMovementQuantity+1)
		require.ErrorAs(t, err, &ves)
		assert.Equal(t, 0, f.balance(t, w.ID))
	})

	t.Run("单价超过列精度", func(t *testing.T) {
		price := decimal.RequireFromString("100000000.00")
		_, err := f.engine.RecordMovement(ctx, inventory.MovementDraft{
			WineID: w.ID, Kind: inventory.KindPurchase, Quantity: 1, UnitPrice: &price,
		})
		var ves inventory.ValidationErrors
		require.ErrorAs(t, err, &ves)
		assert.True(t, ves.Has("unit_price"))
	})

	t.Run("进货后库存超过上限", func(t *testing.T) {
		// 绕过账本把投影推到上限附近
		require.NoError(t, f.wines.ApplyStockDelta(ctx, w.ID, inventory.MaxStockOnHand-5))

		_, err := f.record(t, w.ID, inventory.KindPurchase, 10)
		var ce *inventory.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, inventory.ReasonStockLimit, ce.Reason)
		assert.Equal(t, apperrors.ErrCodeStockLimit, apperrors.CodeOf(err))

		_, err = f.record(t, w.ID, inventory.KindPurchase, 5)
		require.NoError(t, err)
		assert.Equal(t, inventory.MaxStockOnHand, f.balance(t, w.ID))

		// 读操作不受影响
		_, err = f.engine.ListBelowThreshold(ctx)
		require.NoError(t, err)
		check, err := f.engine.Verify(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.MaxStockOnHand, check.Projected)

		_, err = f.record(t, w.ID, inventory.KindSale, 1)
		require.NoError(t, err)
		assert.Equal(t, inventory.MaxStockOnHand-1, f.balance(t, w.ID))
	})
}

type failingWines struct {
	inventory.WineRepository
}

func (failingWines) ApplyStockDelta(context.Context, uint, int) error {
	return errors.New("disk I/O error")
}

func TestRecordMovement_StorageFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	w := f.createWine(t, "FAIL-1", 0)
	engine := NewEngine(failingWines{f.wines}, f.movements, f.uow, keylock.New(), f.clock, logger.NewNop())

	_, err := engine.RecordMovement(context.Background(), inventory.MovementDraft{WineID: w.ID, Kind: inventory.KindPurchase, Quantity: 3})

	var se *inventory.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, apperrors.CodeOf(err))

	n, err := f.movements.CountByWine(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 0, f.balance(t, w.ID))
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) {
	return nil, apperrors.New(apperrors.ErrCodeConflict, "busy")
}

func TestRecordMovement_LockNotObtained(t *testing.T) {
	f := newFixture(t)
	w := f.createWine(t, "LOCK-1", 0)
	engine := NewEngine(f.wines, f.movements, f.uow, busyLocker{}, f.clock, logger.NewNop())

	_, err := engine.RecordMovement(context.Background(), inventory.MovementDraft{WineID: w.ID, Kind: inventory.KindPurchase, Quantity: 1})
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
	assert.Equal(t, 0, f.balance(t, w.ID))
}

func TestRetireWine_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.createWine(t, "RET-2", 2)
	_, err := f.record(t, w.ID, inventory.KindPurchase, 4)
	require.NoError(t, err)

	require.NoError(t, f.engine.RetireWine(ctx, w.ID))
	first, err := f.wines.FindByID(ctx, w.ID)
	require.NoError(t, err)

	require.NoError(t, f.engine.RetireWine(ctx, w.ID))
	second, err := f.wines.FindByID(ctx, w.ID)
	require.NoError(t, err)

	assert.Equal(t, inventory.StateRetired, second.State)
	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.StockOnHand, second.StockOnHand)

	// 下架后历史仍可查询
	history, err := f.engine.MovementHistory(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	var nf *inventory.NotFoundError
	assert.ErrorAs(t, f.engine.RetireWine(ctx, 999), &nf)
}

func TestHardDeleteWine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	used := f.createWine(t, "DEL-1", 0)
	unused := f.createWine(t, "DEL-2", 0)
	_, err := f.record(t, used.ID, inventory.KindPurchase, 1)
	require.NoError(t, err)

	err = f.engine.HardDeleteWine(ctx, used.ID)
	var ce *inventory.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, inventory.ReasonHasMovements, ce.Reason)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))

	// 下架后依然不能物理删除
	require.NoError(t, f.engine.RetireWine(ctx, used.ID))
	assert.ErrorAs(t, f.engine.HardDeleteWine(ctx, used.ID), &ce)

	require.NoError(t, f.engine.HardDeleteWine(ctx, unused.ID))
	var nf *inventory.NotFoundError
	_, err = f.engine.BalanceOf(ctx, unused.ID)
	assert.ErrorAs(t, err, &nf)
}

func TestListBelowThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stock := func(code string, threshold, qty int) *inventory.Wine {
		w := f.createWine(t, code, threshold)
		if qty > 0 {
			_, err := f.record(t, w.ID, inventory.KindPurchase, qty)
			require.NoError(t, err)
		}
		return w
	}

	critical := stock("B-CRIT", 5, 0) // 0-5 = -5
	low := stock("A-LOW", 5, 4)       // 4-5 = -1
	edge := stock("C-EDGE", 3, 3)     // 3-3 = 0
	stock("D-OK", 3, 10)
	stock("E-NOTHRESHOLD", 0, 0)
	retired := stock("F-RETIRED", 5, 1)
	require.NoError(t, f.engine.RetireWine(ctx, retired.ID))

	below, err := f.engine.ListBelowThreshold(ctx)
	require.NoError(t, err)

	ids := make([]uint, len(below))
	for i, e := range below {
		ids[i] = e.Wine.ID
	}
	assert.Equal(t, []uint{critical.ID, low.ID, edge.ID}, ids)

	alerts, err := f.engine.Alerts(ctx)
	require.NoError(t, err)
	// 阈值为0的缺货酒款也需要提醒
	assert.Len(t, alerts, 4)
}

func TestListMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.createWine(t, "LIST-1", 0)
	_, err := f.record(t, w.ID, inventory.KindPurchase, 5)
	require.NoError(t, err)
	_, err = f.record(t, w.ID, inventory.KindSale, 2)
	require.NoError(t, err)

	all, err := f.engine.ListMovements(ctx, inventory.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, inventory.KindSale, all[0].Kind)

	sales, err := f.engine.ListMovements(ctx, inventory.MovementFilter{Kind: inventory.KindSale})
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	_, err = f.engine.ListMovements(ctx, inventory.MovementFilter{Kind: "gift"})
	var ves inventory.ValidationErrors
	assert.ErrorAs(t, err, &ves)

	byCode, err := f.engine.ListMovements(ctx, inventory.MovementFilter{WineCode: "list-", Kind: inventory.KindPurchase})
	require.NoError(t, err)
	assert.Len(t, byCode, 1)

	// 结束时间不晚于起始时间
	at := f.clock.Now()
	_, err = f.engine.ListMovements(ctx, inventory.MovementFilter{From: at, To: at})
	require.ErrorAs(t, err, &ves)
	assert.Equal(t, "to", ves[0].Field)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, apperrors.CodeOf(err))
}

func TestVerify_DetectsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.createWine(t, "DRIFT-1", 0)
	_, err := f.record(t, w.ID, inventory.KindPurchase, 5)
	require.NoError(t, err)

	// 绕过账本直接修改投影
	require.NoError(t, f.wines.ApplyStockDelta(ctx, w.ID, 2))

	check, err := f.engine.Verify(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, check.Consistent)
	assert.Equal(t, 7, check.Projected)
	assert.Equal(t, 5, check.Recomputed)

	_, err = f.engine.Verify(ctx, 999)
	var nf *inventory.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
