// Package alert 低库存提醒
//
// 无状态：每次查询都基于当前库存重新计算，不做持久化，
// 因此提醒不会脱离账本单独过期。
//
// 阈值为0表示不参与低库存提醒；库存为0无论阈值是多少都显示为缺货。
package alert

import (
	"sort"
	"strings"

	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// Status 库存状态
type Status int

const (
	StatusOK         Status = iota // 正常
	StatusLow                      // 低库存: 0 < 库存 <= 阈值
	StatusOutOfStock               // 缺货: 库存 = 0
)

// String 状态名称
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusLow:
		return "low"
	case StatusOutOfStock:
		return "out_of_stock"
	default:
		return "unknown"
	}
}

// MarshalText 序列化为状态名称
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entry (酒款, 当前库存, 阈值)
type Entry struct {
	Wine      *inventory.Wine
	Balance   int
	Threshold int
}

// Shortage 库存与阈值的差，越小越紧急
func (e Entry) Shortage() int {
	return e.Balance - e.Threshold
}

// Alert 一条提醒
type Alert struct {
	Entry
	Status Status
}

// Classify 判断库存状态
func Classify(balance, threshold int) Status {
	if balance <= 0 {
		return StatusOutOfStock
	}
	if threshold > 0 && balance <= threshold {
		return StatusLow
	}
	return StatusOK
}

// EntryOf 从酒款构建条目
func EntryOf(w *inventory.Wine) Entry {
	return Entry{Wine: w, Balance: w.StockOnHand, Threshold: w.MinStockThreshold}
}

// BelowThreshold 筛选 库存<=阈值 且 阈值>0 的条目
// 按(库存-阈值)升序，相同时按名称排序
func BelowThreshold(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Threshold > 0 && e.Balance <= e.Threshold {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// Evaluate 返回所有非正常状态的提醒
// 缺货排在低库存之前，同一状态内按紧急程度排序
func Evaluate(entries []Entry) []Alert {
	alerts := make([]Alert, 0)
	for _, e := range entries {
		if s := Classify(e.Balance, e.Threshold); s != StatusOK {
			alerts = append(alerts, Alert{Entry: e, Status: s})
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Status != alerts[j].Status {
			return alerts[i].Status > alerts[j].Status
		}
		return less(alerts[i].Entry, alerts[j].Entry)
	})
	return alerts
}

func less(a, b Entry) bool {
	if a.Shortage() != b.Shortage() {
		return a.Shortage() < b.Shortage()
	}
	an, bn := strings.ToLower(a.Wine.Name), strings.ToLower(b.Wine.Name)
	if an != bn {
		return an < bn
	}
	return a.Wine.ID < b.Wine.ID
}
