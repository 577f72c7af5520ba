package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// movementRepository 出入库流水仓储实现
// 只有追加和查询，账本条目写入后不再修改
type movementRepository struct {
	db *gorm.DB
}

// NewMovementRepository 创建流水仓储
func NewMovementRepository(db *gorm.DB) inventory.MovementRepository {
	return &movementRepository{db: db}
}

// Append 追加流水
func (r *movementRepository) Append(ctx context.Context, m *inventory.Movement) error {
	model := toMovementModel(m)

	// 关联的Wine只用于建外键，不参与写入
	if err := getDB(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		if isForeignKeyError(err) {
			return inventory.ErrWineNotFound(m.WineID)
		}
		return inventory.NewStorageError("append movement", err)
	}

	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	return nil
}

// List 查询流水，按时间倒序，同一秒内按ID倒序
func (r *movementRepository) List(ctx context.Context, filter inventory.MovementFilter) ([]*inventory.Movement, error) {
	db := getDB(ctx, r.db)
	query := db.Model(&MovementModel{})
	if filter.WineID != 0 {
		query = query.Where("wine_id = ?", filter.WineID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}

	// 按酒款名称/编码过滤时用子查询，避免与wines表的列名冲突
	if filter.WineName != "" || filter.WineCode != "" {
		wines := db.Model(&WineModel{}).Select("id")
		if filter.WineName != "" {
			wines = wines.Where("LOWER(name) LIKE ?", likePattern(filter.WineName))
		}
		if filter.WineCode != "" {
			wines = wines.Where("LOWER(code) LIKE ?", likePattern(filter.WineCode))
		}
		query = query.Where("wine_id IN (?)", wines)
	}

	var models []MovementModel
	if err := query.Order("created_at DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, inventory.NewStorageError("list movements", err)
	}

	movements := make([]*inventory.Movement, len(models))
	for i := range models {
		movements[i] = toMovementEntity(&models[i])
	}
	return movements, nil
}

// CountByWine 某酒款的流水数量
func (r *movementRepository) CountByWine(ctx context.Context, wineID uint) (int64, error) {
	var n int64
	if err := getDB(ctx, r.db).Model(&MovementModel{}).Where("wine_id = ?", wineID).Count(&n).Error; err != nil {
		return 0, inventory.NewStorageError("count movements", err)
	}
	return n, nil
}

// SumByWine 按流水重新计算库存
func (r *movementRepository) SumByWine(ctx context.Context, wineID uint) (int, error) {
	var sum int64
	row := getDB(ctx, r.db).Model(&MovementModel{}).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN quantity ELSE -quantity END), 0)", string(inventory.KindPurchase)).
		Where("wine_id = ?", wineID).
		Row()
	if err := row.Scan(&sum); err != nil {
		return 0, inventory.NewStorageError("sum movements", err)
	}
	return int(sum), nil
}

// LatestTimestamp 某酒款最近一笔流水的时间
func (r *movementRepository) LatestTimestamp(ctx context.Context, wineID uint) (time.Time, error) {
	var model MovementModel
	err := getDB(ctx, r.db).Where("wine_id = ?", wineID).Order("created_at DESC").Order("id DESC").Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, inventory.NewStorageError("latest movement", err)
	}
	return model.CreatedAt, nil
}

func toMovementModel(m *inventory.Movement) *MovementModel {
	model := &MovementModel{
		ID:              m.ID,
		WineID:          m.WineID,
		Kind:            string(m.Kind),
		Quantity:        m.Quantity,
		UnitPriceAtTime: m.UnitPriceAtTime,
		CreatedAt:       m.CreatedAt,
	}
	if m.Note != "" {
		note := m.Note
		model.Note = &note
	}
	return model
}

func toMovementEntity(model *MovementModel) *inventory.Movement {
	m := &inventory.Movement{
		ID:              model.ID,
		WineID:          model.WineID,
		Kind:            inventory.Kind(model.Kind),
		Quantity:        model.Quantity,
		UnitPriceAtTime: model.UnitPriceAtTime,
		CreatedAt:       model.CreatedAt,
	}
	if model.Note != nil {
		m.Note = *model.Note
	}
	return m
}
