package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind 出入库类型
// 方向由类型表达，数量永远为正
type Kind string

const (
	KindPurchase Kind = "purchase" // 进货(入库)
	KindSale     Kind = "sale"     // 销售(出库)
)

// MaxMovementQuantity 单笔流水数量上限
const MaxMovementQuantity = 1_000_000

// ParseKind 解析类型(不区分大小写)
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPurchase:
		return KindPurchase, true
	case KindSale:
		return KindSale, true
	default:
		return "", false
	}
}

// IsValid 是否为已知类型
func (k Kind) IsValid() bool {
	return k == KindPurchase || k == KindSale
}

// Sign 对库存的影响方向
func (k Kind) Sign() int {
	if k == KindSale {
		return -1
	}
	return 1
}

// Movement 出入库流水(账本条目)
// 一经写入不可修改、不可删除，更正只能通过追加一笔反向流水
type Movement struct {
	ID              uint
	WineID          uint
	Kind            Kind
	Quantity        int
	UnitPriceAtTime decimal.Decimal // 成交时单价快照，与酒款当前价格无关
	Note            string
	CreatedAt       time.Time
}

// Delta 对库存的带符号影响
func (m *Movement) Delta() int {
	return m.Kind.Sign() * m.Quantity
}

// Subtotal 小计 = 数量 × 单价
func (m *Movement) Subtotal() decimal.Decimal {
	return m.UnitPriceAtTime.Mul(decimal.NewFromInt(int64(m.Quantity)))
}

// MovementDraft 经过校验的流水输入
// UnitPrice 为 nil 时使用酒款的默认价格
type MovementDraft struct {
	WineID    uint
	Kind      Kind
	Quantity  int
	UnitPrice *decimal.Decimal
	Note      string
}

// MovementFilter 流水查询条件，零值字段不参与过滤
type MovementFilter struct {
	WineID   uint
	Kind     Kind
	WineName string    // 酒款名称包含，不区分大小写
	WineCode string    // 酒款编码包含，不区分大小写
	From     time.Time // created_at >= From
	To       time.Time // created_at < To
}

// Validate 检查类型和时间区间
func (f MovementFilter) Validate() error {
	var errs ValidationErrors
	if f.Kind != "" && !f.Kind.IsValid() {
		errs = append(errs, ValidationError{Field: "kind", Reason: "must be one of [purchase sale]"})
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.To.After(f.From) {
		errs = append(errs, ValidationError{Field: "to", Reason: "must be after from"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StampTime 生成流水时间戳
// 精确到秒，且不早于同一酒款的上一笔流水，保证该酒款的时间按写入顺序单调不减
func StampTime(now, last time.Time) time.Time {
	stamped := now.Truncate(time.Second)
	if stamped.Before(last) {
		return last
	}
	return stamped
}
