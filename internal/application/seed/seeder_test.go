package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/winestock/internal/application/catalog"
	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/logger"
	"github.com/xiebiao/winestock/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/winestock/internal/testutil"
	"github.com/xiebiao/winestock/pkg/keylock"
)

func newSeeder(t *testing.T) (*Seeder, *ledger.Engine, inventory.WineRepository) {
	db := testutil.NewDB(t)
	wines := gormdb.NewWineRepository(db)
	uow := gormdb.NewTxManager(db)
	locker := keylock.New()
	clock := &testutil.FixedClock{T: time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local)}
	log := logger.NewNop()

	engine := ledger.NewEngine(wines, gormdb.NewMovementRepository(db), uow, locker, clock, log)
	cat := catalog.NewService(wines, gormdb.NewShopRepository(db), uow, locker, clock, log)
	return NewSeeder(cat, engine, wines, log), engine, wines
}

func openingCount() int {
	n := 0
	for _, w := range sampleWines {
		if w.Opening > 0 {
			n++
		}
	}
	return n
}

func TestSeed_WinesOnly(t *testing.T) {
	s, engine, wines := newSeeder(t)
	ctx := context.Background()

	res, err := s.Seed(ctx, false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, len(sampleWines), res.Wines)
	assert.Equal(t, openingCount(), res.Movements)

	w, err := wines.FindByCode(ctx, "AR-MALB-003")
	require.NoError(t, err)
	balance, err := engine.BalanceOf(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	history, err := engine.MovementHistory(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "opening balance", history[0].Note)
	assert.True(t, history[0].UnitPriceAtTime.Equal(w.PurchasePrice))
}

func TestSeed_Idempotent(t *testing.T) {
	s, _, wines := newSeeder(t)
	ctx := context.Background()

	_, err := s.Seed(ctx, false)
	require.NoError(t, err)

	res, err := s.Seed(ctx, true)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	n, err := wines.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleWines)), n)
}

func TestSeed_WithTransactions(t *testing.T) {
	s, engine, wines := newSeeder(t)
	ctx := context.Background()

	res, err := s.Seed(ctx, true)
	require.NoError(t, err)
	assert.Zero(t, res.Rejected)
	assert.Equal(t, openingCount()+len(sampleMovements), res.Movements)

	expected := map[string]int{
		"AR-MALB-001": 0,
		"AR-MALB-003": 8,
		"CL-RED-002":  3,
		"ES-FORT-001": 10,
		"US-RED-002":  34,
	}
	for code, want := range expected {
		w, err := wines.FindByCode(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, want, w.StockOnHand, code)

		check, err := engine.Verify(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, check.Consistent, code)
	}

	below, err := engine.ListBelowThreshold(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, below)
	// 缺口最大的排在最前
	assert.Equal(t, "US-RED-002", below[0].Wine.Code)
}
