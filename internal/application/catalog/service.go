package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/application/validation"
	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// Service 酒款目录与店铺信息
// 设计说明:
// 1. 只维护描述性字段、价格、阈值，库存只能通过账本的流水改变
// 2. 新酒款库存为0，期初库存需要记录一笔进货
// 3. 更新与账本共用酒款级锁，避免和下架、记账交错
type Service struct {
	wines  inventory.WineRepository
	shops  inventory.ShopRepository
	uow    inventory.UnitOfWork
	locker ledger.Locker
	clock  inventory.Clock
	log    logrus.FieldLogger
}

// NewService 创建目录服务
func NewService(
	wines inventory.WineRepository,
	shops inventory.ShopRepository,
	uow inventory.UnitOfWork,
	locker ledger.Locker,
	clock inventory.Clock,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		wines:  wines,
		shops:  shops,
		uow:    uow,
		locker: locker,
		clock:  clock,
		log:    log.WithField("module", "catalog"),
	}
}

// CreateWine 创建酒款
// 编码重复返回ConflictError
func (s *Service) CreateWine(ctx context.Context, in validation.WineInput) (*inventory.Wine, error) {
	draft, err := validation.NormalizeWine(in)
	if err != nil {
		return nil, err
	}

	w := inventory.NewWine(draft, s.clock.Now())
	if err := s.wines.Create(ctx, w); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"wine_id": w.ID, "code": w.Code}).Info("创建酒款")
	return w, nil
}

// UpdateWine 更新酒款的描述性字段、价格和阈值
func (s *Service) UpdateWine(ctx context.Context, id uint, in validation.WineInput) (*inventory.Wine, error) {
	draft, err := validation.NormalizeWine(in)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, fmt.Sprintf("wine:%d", id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *inventory.Wine
	err = s.uow.Transaction(ctx, func(ctx context.Context) error {
		w, err := s.wines.LockByID(ctx, id)
		if err != nil {
			return err
		}
		w.ApplyDraft(draft, s.clock.Now())
		if err := s.wines.Update(ctx, w); err != nil {
			return err
		}
		updated = w
		return nil
	})
	if err != nil {
		return nil, inventory.NewStorageError("update wine", err)
	}
	return updated, nil
}

// GetWine 查询酒款
func (s *Service) GetWine(ctx context.Context, id uint) (*inventory.Wine, error) {
	return s.wines.FindByID(ctx, id)
}

// ListWines 酒款列表
func (s *Service) ListWines(ctx context.Context, params inventory.ListParams) ([]*inventory.Wine, error) {
	switch params.OrderBy {
	case "", "name", "code", "vintage", "stock":
	default:
		return nil, inventory.ValidationErrors{{Field: "order_by", Reason: "must be one of [name code vintage stock]"}}
	}
	params.Keyword = strings.TrimSpace(params.Keyword)
	return s.wines.List(ctx, params)
}

// ReferenceData 颜色、类型、品种的可选值
func (s *Service) ReferenceData() inventory.ReferenceData {
	return inventory.References()
}

// Shop 店铺信息
func (s *Service) Shop(ctx context.Context) (*inventory.Shop, error) {
	return s.shops.Get(ctx)
}

// RenameShop 修改店铺名称和logo
func (s *Service) RenameShop(ctx context.Context, name, logoPath string) (*inventory.Shop, error) {
	name = strings.TrimSpace(name)
	logoPath = strings.TrimSpace(logoPath)

	var errs inventory.ValidationErrors
	if n := utf8.RuneCountInString(name); n < 1 || n > 100 {
		errs = append(errs, inventory.ValidationError{Field: "name", Reason: "length must be between 1 and 100"})
	}
	if utf8.RuneCountInString(logoPath) > 255 {
		errs = append(errs, inventory.ValidationError{Field: "logo_path", Reason: "length must be at most 255"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	shop, err := s.shops.Get(ctx)
	if err != nil {
		return nil, err
	}
	shop.Name = name
	shop.LogoPath = logoPath
	if err := s.shops.Save(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}
