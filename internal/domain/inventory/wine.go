package inventory

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 数值上限
// 价格列为 decimal(10,2)，库存投影按32位整数封顶，MySQL和SQLite都能原样存储
const (
	MaxStockOnHand = math.MaxInt32
	MaxPriceText   = "99999999.99"
)

// MaxPrice 单价上限
var MaxPrice = decimal.RequireFromString(MaxPriceText)

// LifecycleState 酒款生命周期状态
// 只允许 Active → Retired 单向转换，下架后不可重新上架
type LifecycleState int

const (
	StateActive  LifecycleState = 1 // 在售
	StateRetired LifecycleState = 2 // 已下架(软删除)
)

// String 返回状态名称
func (s LifecycleState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// ParseLifecycleState 解析状态名称(不区分大小写)
func ParseLifecycleState(s string) (LifecycleState, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StateActive, true
	case "retired":
		return StateRetired, true
	default:
		return 0, false
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s LifecycleState) CanTransitionTo(target LifecycleState) bool {
	transitions := map[LifecycleState][]LifecycleState{
		StateActive:  {StateRetired},
		StateRetired: {}, // 终态
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Wine 酒款实体(聚合根)
// 设计说明:
// 1. StockOnHand 是出入库流水的派生投影，只能由账本在记录流水的同一事务中维护
// 2. 价格使用decimal，避免浮点误差
// 3. Code 是业务唯一标识(如 AR-MALB-001)
type Wine struct {
	ID                uint
	Name              string
	Winery            string
	Vintage           int
	Region            string
	Varietal          string
	Colour            string
	Style             string
	Code              string
	UnitPrice         decimal.Decimal // 售价
	PurchasePrice     decimal.Decimal // 进价
	MinStockThreshold int             // 0 表示不做低库存提醒
	State             LifecycleState
	StockOnHand       int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WineDraft 经过校验和规范化的酒款输入
type WineDraft struct {
	Name              string
	Winery            string
	Vintage           int
	Region            string
	Varietal          string
	Colour            string
	Style             string
	Code              string
	UnitPrice         decimal.Decimal
	PurchasePrice     decimal.Decimal
	MinStockThreshold int
}

// NewWine 创建新酒款(工厂方法)
// 新酒款库存为0，期初库存必须通过一笔显式的进货流水录入
func NewWine(d WineDraft, now time.Time) *Wine {
	w := &Wine{
		State:     StateActive,
		CreatedAt: now,
	}
	w.ApplyDraft(d, now)
	return w
}

// ApplyDraft 更新描述性字段、价格和阈值
// 不会修改状态和库存
func (w *Wine) ApplyDraft(d WineDraft, now time.Time) {
	w.Name = d.Name
	w.Winery = d.Winery
	w.Vintage = d.Vintage
	w.Region = d.Region
	w.Varietal = d.Varietal
	w.Colour = d.Colour
	w.Style = d.Style
	w.Code = d.Code
	w.UnitPrice = d.UnitPrice
	w.PurchasePrice = d.PurchasePrice
	w.MinStockThreshold = d.MinStockThreshold
	w.UpdatedAt = now
}

// IsActive 是否在售
func (w *Wine) IsActive() bool {
	return w.State == StateActive
}

// TransitionTo 状态转换
func (w *Wine) TransitionTo(target LifecycleState, now time.Time) error {
	if !w.State.CanTransitionTo(target) {
		return &ConflictError{Entity: "wine", ID: w.ID, Reason: "illegal state transition " + w.State.String() + " -> " + target.String()}
	}
	w.State = target
	w.UpdatedAt = now
	return nil
}

// Retire 下架酒款
// 幂等：已下架时返回 changed=false 且不报错
func (w *Wine) Retire(now time.Time) (changed bool, err error) {
	if w.State == StateRetired {
		return false, nil
	}
	if err := w.TransitionTo(StateRetired, now); err != nil {
		return false, err
	}
	return true, nil
}

// CanReceive 进货qty瓶后库存是否仍不超过上限
func (w *Wine) CanReceive(qty int) bool {
	return qty >= 0 && w.StockOnHand <= MaxStockOnHand-qty
}

// DefaultPrice 未指定成交价时的默认单价
// 进货取进价，销售取售价
func (w *Wine) DefaultPrice(kind Kind) decimal.Decimal {
	if kind == KindPurchase {
		return w.PurchasePrice
	}
	return w.UnitPrice
}

// StockValue 按售价计算的库存货值
func (w *Wine) StockValue() decimal.Decimal {
	return w.UnitPrice.Mul(decimal.NewFromInt(int64(w.StockOnHand)))
}
