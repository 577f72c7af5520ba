package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/winestock/internal/domain/inventory"
)

func entry(id uint, name string, balance, threshold int) Entry {
	w := &inventory.Wine{ID: id, Name: name, StockOnHand: balance, MinStockThreshold: threshold, State: inventory.StateActive}
	return EntryOf(w)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		balance   int
		threshold int
		want      Status
	}{
		{"库存充足", 10, 5, StatusOK},
		{"等于阈值", 5, 5, StatusLow},
		{"低于阈值", 1, 5, StatusLow},
		{"缺货", 0, 5, StatusOutOfStock},
		{"阈值0且缺货仍显示缺货", 0, 0, StatusOutOfStock},
		{"阈值0不提醒低库存", 1, 0, StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.balance, tt.threshold))
		})
	}
}

func TestBelowThreshold(t *testing.T) {
	entries := []Entry{
		entry(1, "Zeta", 3, 5),  // -2
		entry(2, "Alpha", 0, 2), // -2
		entry(3, "Mid", 0, 0),   // 阈值0，排除
		entry(4, "Rich", 9, 5),  // 库存充足，排除
		entry(5, "Edge", 4, 4),  // 0
		entry(6, "Worst", 0, 6), // -6
	}

	got := BelowThreshold(entries)
	require.Len(t, got, 4)

	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.Wine.Name
	}
	assert.Equal(t, []string{"Worst", "Alpha", "Zeta", "Edge"}, names)
}

func TestEvaluate(t *testing.T) {
	entries := []Entry{
		entry(1, "Low", 2, 5),
		entry(2, "Empty no threshold", 0, 0),
		entry(3, "Fine", 20, 5),
		entry(4, "Empty", 0, 3),
	}

	got := Evaluate(entries)
	require.Len(t, got, 3)

	assert.Equal(t, StatusOutOfStock, got[0].Status)
	assert.Equal(t, "Empty", got[0].Wine.Name)
	assert.Equal(t, StatusOutOfStock, got[1].Status)
	assert.Equal(t, "Empty no threshold", got[1].Wine.Name)
	assert.Equal(t, StatusLow, got[2].Status)
}

func TestStatus_String(t *testing.T) {
	text, err := StatusOutOfStock.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "out_of_stock", string(text))
	assert.Equal(t, "low", StatusLow.String())
}
