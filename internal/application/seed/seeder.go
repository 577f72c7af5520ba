package seed

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/winestock/internal/application/catalog"
	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/application/validation"
	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// Seeder 演示数据
// 只通过目录服务和账本的公开接口写入，期初库存记为进货流水
type Seeder struct {
	catalog *catalog.Service
	engine  *ledger.Engine
	wines   inventory.WineRepository
	log     logrus.FieldLogger
}

// Result 写入统计
type Result struct {
	Skipped   bool
	Wines     int
	Movements int
	Rejected  int
}

// NewSeeder 创建Seeder
func NewSeeder(catalog *catalog.Service, engine *ledger.Engine, wines inventory.WineRepository, log logrus.FieldLogger) *Seeder {
	return &Seeder{catalog: catalog, engine: engine, wines: wines, log: log.WithField("module", "seed")}
}

// Seed 写入示例酒款，withTransactions为true时再写入一组进货和销售
// 库里已有酒款时跳过
func (s *Seeder) Seed(ctx context.Context, withTransactions bool) (Result, error) {
	var res Result

	n, err := s.wines.Count(ctx)
	if err != nil {
		return res, err
	}
	if n > 0 {
		s.log.WithField("wines", n).Warn("已有酒款，跳过演示数据。请清空酒款或使用新的数据库")
		res.Skipped = true
		return res, nil
	}

	codes := make(map[string]uint, len(sampleWines))
	for _, sample := range sampleWines {
		w, err := s.catalog.CreateWine(ctx, sample.WineInput)
		if err != nil {
			return res, err
		}
		codes[w.Code] = w.ID
		res.Wines++

		if sample.Opening > 0 {
			if _, err := s.engine.RecordMovement(ctx, inventory.MovementDraft{
				WineID:   w.ID,
				Kind:     inventory.KindPurchase,
				Quantity: sample.Opening,
				Note:     "opening balance",
			}); err != nil {
				return res, err
			}
			res.Movements++
		}
	}

	if withTransactions {
		for _, sample := range sampleMovements {
			draft, err := validation.NormalizeMovement(validation.MovementInput{
				WineID:    codes[sample.Code],
				Kind:      sample.Kind,
				Quantity:  sample.Quantity,
				UnitPrice: sample.Price,
				Note:      "demo",
			})
			if err != nil {
				return res, err
			}

			_, err = s.engine.RecordMovement(ctx, draft)
			var ins *inventory.InsufficientStockError
			switch {
			case errors.As(err, &ins):
				res.Rejected++
			case err != nil:
				return res, err
			default:
				res.Movements++
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"wines":     res.Wines,
		"movements": res.Movements,
		"rejected":  res.Rejected,
	}).Info("演示数据写入完成")
	return res, nil
}
