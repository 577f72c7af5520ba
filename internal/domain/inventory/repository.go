package inventory

import (
	"context"
	"time"
)

// WineRepository 酒款仓储接口
// 由domain层定义，infrastructure层实现
// 所有方法都需要参与ctx中携带的事务
type WineRepository interface {
	// Create 创建酒款，Code重复时返回ConflictError
	Create(ctx context.Context, w *Wine) error

	// FindByID 查询酒款，不存在返回NotFoundError
	FindByID(ctx context.Context, id uint) (*Wine, error)

	// FindByCode 根据业务编码查询
	FindByCode(ctx context.Context, code string) (*Wine, error)

	// Update 更新描述性字段、价格、阈值和状态(不包括库存投影)
	Update(ctx context.Context, w *Wine) error

	// Delete 物理删除
	Delete(ctx context.Context, id uint) error

	// List 列表查询
	List(ctx context.Context, params ListParams) ([]*Wine, error)

	// Count 酒款总数(含已下架)
	Count(ctx context.Context) (int64, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE)
	LockByID(ctx context.Context, id uint) (*Wine, error)

	// ApplyStockDelta 原子更新库存投影
	// 条件更新 0 <= stock_on_hand + delta <= MaxStockOnHand
	// 低于0返回InsufficientStockError，超过上限返回ConflictError(ReasonStockLimit)
	ApplyStockDelta(ctx context.Context, id uint, delta int) error
}

// MovementRepository 出入库流水仓储接口
// 只提供追加和查询，没有修改和删除
type MovementRepository interface {
	// Append 追加一笔流水
	Append(ctx context.Context, m *Movement) error

	// List 查询流水，按时间倒序
	List(ctx context.Context, filter MovementFilter) ([]*Movement, error)

	// CountByWine 某酒款的流水数量
	CountByWine(ctx context.Context, wineID uint) (int64, error)

	// SumByWine 按流水重新计算库存: Σ进货 - Σ销售
	SumByWine(ctx context.Context, wineID uint) (int, error)

	// LatestTimestamp 某酒款最近一笔流水的时间，无流水时返回零值
	// 与酒款锁的范围一致，时间戳只保证同一酒款内单调不减
	LatestTimestamp(ctx context.Context, wineID uint) (time.Time, error)
}

// ShopRepository 店铺信息仓储(单例)
type ShopRepository interface {
	// Get 获取店铺信息，不存在时创建默认记录
	Get(ctx context.Context) (*Shop, error)

	// Save 保存店铺信息
	Save(ctx context.Context, s *Shop) error
}

// UnitOfWork 事务边界
// fn返回error时回滚，返回nil时提交，每次调用恰好提交或回滚一次
type UnitOfWork interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock 时钟，用于流水时间戳
type Clock interface {
	Now() time.Time
}

// SystemClock 系统时钟
type SystemClock struct{}

// Now 当前时间
func (SystemClock) Now() time.Time { return time.Now() }

// ListParams 酒款列表查询参数，零值字段不参与过滤
type ListParams struct {
	State   LifecycleState // 0 表示全部
	Keyword string         // 搜索名称、酒庄、编码
	OrderBy string         // name | code | vintage | stock

	// 按字段过滤
	// 文本字段为包含匹配(不区分大小写)，颜色、类型、品种、年份为精确匹配
	Name     string
	Code     string
	Winery   string
	Region   string
	Colour   string
	Style    string
	Varietal string
	Vintage  int
}
