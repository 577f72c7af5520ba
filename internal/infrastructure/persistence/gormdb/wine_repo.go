package gormdb

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// wineRepository 酒款仓储实现
// 1. 实现domain/inventory/repository.go定义的接口
// 2. 负责领域实体与GORM模型之间的转换
// 3. 把数据库错误(编码重复、外键约束)转换为领域错误
type wineRepository struct {
	db *gorm.DB
}

// NewWineRepository 创建酒款仓储
func NewWineRepository(db *gorm.DB) inventory.WineRepository {
	return &wineRepository{db: db}
}

// Create 创建酒款
func (r *wineRepository) Create(ctx context.Context, w *inventory.Wine) error {
	model := toWineModel(w)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return &inventory.ConflictError{Entity: inventory.EntityWine, Reason: inventory.ReasonDuplicate}
		}
		return inventory.NewStorageError("create wine", err)
	}

	// 回填自增ID
	w.ID = model.ID
	w.CreatedAt = model.CreatedAt
	w.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找酒款
func (r *wineRepository) FindByID(ctx context.Context, id uint) (*inventory.Wine, error) {
	var model WineModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrWineNotFound(id)
		}
		return nil, inventory.NewStorageError("find wine", err)
	}
	return toWineEntity(&model), nil
}

// FindByCode 根据编码查找酒款
func (r *wineRepository) FindByCode(ctx context.Context, code string) (*inventory.Wine, error) {
	var model WineModel
	if err := getDB(ctx, r.db).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &inventory.NotFoundError{Entity: inventory.EntityWine}
		}
		return nil, inventory.NewStorageError("find wine by code", err)
	}
	return toWineEntity(&model), nil
}

// Update 更新酒款
// 库存投影stock_on_hand不在更新列表里，只能通过ApplyStockDelta修改
func (r *wineRepository) Update(ctx context.Context, w *inventory.Wine) error {
	model := toWineModel(w)

	result := getDB(ctx, r.db).Model(&WineModel{ID: w.ID}).
		Select("name", "winery", "vintage", "region", "varietal", "colour", "style", "code",
			"unit_price", "purchase_price", "min_stock_threshold", "state", "updated_at").
		Updates(model)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return &inventory.ConflictError{Entity: inventory.EntityWine, ID: w.ID, Reason: inventory.ReasonDuplicate}
		}
		return inventory.NewStorageError("update wine", result.Error)
	}
	if result.RowsAffected == 0 {
		return inventory.ErrWineNotFound(w.ID)
	}

	w.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 物理删除酒款
// 存在流水时外键约束(ON DELETE RESTRICT)拒绝删除
func (r *wineRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&WineModel{}, id)
	if result.Error != nil {
		if isForeignKeyError(result.Error) {
			return &inventory.ConflictError{Entity: inventory.EntityWine, ID: id, Reason: inventory.ReasonHasMovements}
		}
		return inventory.NewStorageError("delete wine", result.Error)
	}
	if result.RowsAffected == 0 {
		return inventory.ErrWineNotFound(id)
	}
	return nil
}

// List 查询酒款列表
func (r *wineRepository) List(ctx context.Context, params inventory.ListParams) ([]*inventory.Wine, error) {
	query := getDB(ctx, r.db).Model(&WineModel{})

	if params.State != 0 {
		query = query.Where("state = ?", int(params.State))
	}

	// 关键词搜索(名称、酒庄、编码)
	if params.Keyword != "" {
		keyword := likePattern(params.Keyword)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(winery) LIKE ? OR LOWER(code) LIKE ?", keyword, keyword, keyword)
	}

	// 按字段过滤，列名固定，不来自用户输入
	contains := []struct{ col, value string }{
		{"name", params.Name}, {"code", params.Code}, {"winery", params.Winery}, {"region", params.Region},
	}
	for _, f := range contains {
		if strings.TrimSpace(f.value) != "" {
			query = query.Where("LOWER("+f.col+") LIKE ?", likePattern(f.value))
		}
	}
	exact := []struct{ col, value string }{
		{"colour", params.Colour}, {"style", params.Style}, {"varietal", params.Varietal},
	}
	for _, f := range exact {
		if v := strings.ToLower(strings.TrimSpace(f.value)); v != "" {
			query = query.Where(f.col+" = ?", v)
		}
	}
	if params.Vintage != 0 {
		query = query.Where("vintage = ?", params.Vintage)
	}

	switch params.OrderBy {
	case "code":
		query = query.Order("code ASC")
	case "vintage":
		query = query.Order("vintage DESC").Order("name ASC")
	case "stock":
		query = query.Order("stock_on_hand ASC").Order("name ASC")
	default:
		query = query.Order("name ASC")
	}
	query = query.Order("id ASC")

	var models []WineModel
	if err := query.Find(&models).Error; err != nil {
		return nil, inventory.NewStorageError("list wines", err)
	}

	wines := make([]*inventory.Wine, len(models))
	for i := range models {
		wines[i] = toWineEntity(&models[i])
	}
	return wines, nil
}

// Count 酒款总数
func (r *wineRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := getDB(ctx, r.db).Model(&WineModel{}).Count(&total).Error; err != nil {
		return 0, inventory.NewStorageError("count wines", err)
	}
	return total, nil
}

// LockByID 悲观锁查询酒款
// MySQL下生成SELECT ... FOR UPDATE，SQLite不支持行锁，依靠单连接串行事务
// 必须在TxManager.Transaction内调用
func (r *wineRepository) LockByID(ctx context.Context, id uint) (*inventory.Wine, error) {
	var model WineModel
	db := getDB(ctx, r.db)
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrWineNotFound(id)
		}
		return nil, inventory.NewStorageError("lock wine", err)
	}
	return toWineEntity(&model), nil
}

// ApplyStockDelta 原子更新库存投影
// UPDATE wines SET stock_on_hand = stock_on_hand + ?
// WHERE id = ? AND stock_on_hand + ? >= 0 AND stock_on_hand + ? <= MaxStockOnHand
func (r *wineRepository) ApplyStockDelta(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)
	result := db.Model(&WineModel{}).
		Where("id = ?", id).
		Where("stock_on_hand + ? >= 0", delta).                           // 防止库存为负
		Where("stock_on_hand + ? <= ?", delta, inventory.MaxStockOnHand). // 防止溢出
		Update("stock_on_hand", gorm.Expr("stock_on_hand + ?", delta))
	if result.Error != nil {
		return inventory.NewStorageError("apply stock delta", result.Error)
	}

	if result.RowsAffected == 0 {
		// 酒款不存在、库存不足或超过上限，再查一次确定原因
		var model WineModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return inventory.ErrWineNotFound(id)
			}
			return inventory.NewStorageError("find wine", err)
		}
		if delta > 0 {
			return &inventory.ConflictError{Entity: inventory.EntityWine, ID: id, Reason: inventory.ReasonStockLimit}
		}
		return &inventory.InsufficientStockError{WineID: id, Requested: -delta, Available: model.StockOnHand}
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toWineModel(w *inventory.Wine) *WineModel {
	return &WineModel{
		ID:                w.ID,
		Name:              w.Name,
		Winery:            w.Winery,
		Vintage:           w.Vintage,
		Region:            w.Region,
		Varietal:          w.Varietal,
		Colour:            w.Colour,
		Style:             w.Style,
		Code:              w.Code,
		UnitPrice:         w.UnitPrice,
		PurchasePrice:     w.PurchasePrice,
		MinStockThreshold: w.MinStockThreshold,
		State:             int(w.State),
		StockOnHand:       w.StockOnHand,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

// toWineEntity GORM模型 → 领域实体
func toWineEntity(m *WineModel) *inventory.Wine {
	return &inventory.Wine{
		ID:                m.ID,
		Name:              m.Name,
		Winery:            m.Winery,
		Vintage:           m.Vintage,
		Region:            m.Region,
		Varietal:          m.Varietal,
		Colour:            m.Colour,
		Style:             m.Style,
		Code:              m.Code,
		UnitPrice:         m.UnitPrice,
		PurchasePrice:     m.PurchasePrice,
		MinStockThreshold: m.MinStockThreshold,
		State:             inventory.LifecycleState(m.State),
		StockOnHand:       m.StockOnHand,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
