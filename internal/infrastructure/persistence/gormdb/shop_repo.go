package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// shopRepository 店铺信息仓储，表里只有一行
type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓储
func NewShopRepository(db *gorm.DB) inventory.ShopRepository {
	return &shopRepository{db: db}
}

// Get 获取店铺信息，首次访问时写入默认记录
func (r *shopRepository) Get(ctx context.Context) (*inventory.Shop, error) {
	db := getDB(ctx, r.db)

	var model ShopModel
	err := db.Order("id ASC").First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = ShopModel{Name: inventory.DefaultShopName}
		err = db.Create(&model).Error
	}
	if err != nil {
		return nil, inventory.NewStorageError("get shop", err)
	}

	return &inventory.Shop{ID: model.ID, Name: model.Name, LogoPath: model.LogoPath}, nil
}

// Save 保存店铺信息
func (r *shopRepository) Save(ctx context.Context, s *inventory.Shop) error {
	model := &ShopModel{ID: s.ID, Name: s.Name, LogoPath: s.LogoPath}
	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return inventory.NewStorageError("save shop", err)
	}
	s.ID = model.ID
	return nil
}
