package gormdb

import (
	"time"

	"github.com/shopspring/decimal"
)

// WineModel GORM酒款模型
// 设计说明:
// 1. 这是infrastructure层的数据模型，domain/inventory/wine.go是领域实体
// 2. StockOnHand是流水的投影，只在记录流水的事务内通过条件更新维护
// 3. Code有唯一索引
type WineModel struct {
	ID                uint            `gorm:"primaryKey"`
	Name              string          `gorm:"index:idx_wines_name;size:100;not null"`
	Winery            string          `gorm:"size:100;not null"`
	Vintage           int             `gorm:"not null"`
	Region            string          `gorm:"size:100"`
	Varietal          string          `gorm:"size:50"`
	Colour            string          `gorm:"size:20;not null"`
	Style             string          `gorm:"size:20;not null"`
	Code              string          `gorm:"uniqueIndex;size:40;not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PurchasePrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MinStockThreshold int             `gorm:"not null;default:0"`
	State             int             `gorm:"index;not null;default:1"` // 1在售 2已下架
	StockOnHand       int             `gorm:"not null;default:0;check:chk_wines_stock,stock_on_hand >= 0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName 指定表名
func (WineModel) TableName() string {
	return "wines"
}

// MovementModel GORM出入库流水模型
// 1. wine_id外键 ON DELETE RESTRICT，有流水的酒款无法物理删除
// 2. quantity有CHECK约束，必须>0
// 3. UnitPriceAtTime是成交时的价格快照
type MovementModel struct {
	ID              uint            `gorm:"primaryKey"`
	WineID          uint            `gorm:"index:idx_movements_wine;not null"`
	Wine            WineModel       `gorm:"foreignKey:WineID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Kind            string          `gorm:"type:varchar(10);index;not null;check:chk_movements_kind,kind IN ('purchase','sale')"`
	Quantity        int             `gorm:"not null;check:chk_movements_quantity,quantity > 0"`
	UnitPriceAtTime decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Note            *string         `gorm:"size:255"`
	CreatedAt       time.Time       `gorm:"index;not null"`
}

// TableName 指定表名
func (MovementModel) TableName() string {
	return "stock_movements"
}

// ShopModel 店铺信息(单行)
type ShopModel struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:100;not null"`
	LogoPath string `gorm:"size:255"`
}

// TableName 指定表名
func (ShopModel) TableName() string {
	return "shops"
}
