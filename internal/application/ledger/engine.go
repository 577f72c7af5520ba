package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/xiebiao/winestock/internal/domain/alert"
	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/logger"
	"github.com/xiebiao/winestock/pkg/metrics"
	"github.com/xiebiao/winestock/pkg/tracing"
)

const tracerName = "winestock/ledger"

// Locker 按酒款串行化写操作
// 进程内使用keylock，多进程共享数据库时使用Redis锁
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Engine 库存账本引擎
// 库存 = Σ进货 - Σ销售，wines.stock_on_hand是这个合计的投影
// 引擎是流水表唯一的写入方，每次写入在同一事务内追加流水并更新投影
type Engine struct {
	wines     inventory.WineRepository
	movements inventory.MovementRepository
	uow       inventory.UnitOfWork
	locker    Locker
	clock     inventory.Clock
	log       logrus.FieldLogger
}

// NewEngine 创建账本引擎
func NewEngine(
	wines inventory.WineRepository,
	movements inventory.MovementRepository,
	uow inventory.UnitOfWork,
	locker Locker,
	clock inventory.Clock,
	log logrus.FieldLogger,
) *Engine {
	metrics.InitMetrics()
	return &Engine{
		wines:     wines,
		movements: movements,
		uow:       uow,
		locker:    locker,
		clock:     clock,
		log:       log.WithField("module", "ledger"),
	}
}

// BalanceCheck 库存投影与流水合计的对账结果
type BalanceCheck struct {
	WineID     uint `json:"wine_id"`
	Projected  int  `json:"projected"`  // wines.stock_on_hand
	Recomputed int  `json:"recomputed"` // Σ进货 - Σ销售
	Consistent bool `json:"consistent"`
}

// RecordMovement 记录一笔出入库流水
//
// 流程:
// 1. 获取酒款级锁
// 2. 开启事务，SELECT ... FOR UPDATE 锁定酒款
// 3. 酒款必须在售；销售数量不能超过当前库存，进货后库存不能超过上限
// 4. 追加流水
// 5. 条件更新库存投影(stock_on_hand + delta >= 0)，提交前再次校验
// 6. 提交
//
// 任何一步失败整个事务回滚，不会出现只写了流水或只改了库存的情况
func (e *Engine) RecordMovement(ctx context.Context, d inventory.MovementDraft) (*inventory.Movement, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "ledger.RecordMovement")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("wine.id", int64(d.WineID)),
		attribute.String("movement.kind", string(d.Kind)),
		attribute.Int("movement.quantity", d.Quantity),
	)

	m, err := e.recordMovement(ctx, d)
	metrics.ObserveHistogram(metrics.MovementRecordDuration, time.Since(start).Seconds())

	if err != nil {
		reason := rejectReason(err)
		metrics.IncCounterVec(metrics.MovementsRejectedTotal, map[string]string{"reason": reason})
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)

		if reason == "storage" {
			logger.LogError(e.log, "ledger", "RecordMovement", "record movement", d, err)
		} else {
			e.log.WithFields(logrus.Fields{
				"wine_id":  d.WineID,
				"kind":     d.Kind,
				"quantity": d.Quantity,
				"reason":   reason,
				"trace_id": tracing.ExtractTraceID(ctx),
			}).Warn(err.Error())
		}
		return nil, err
	}

	metrics.IncCounterVec(metrics.MovementsRecordedTotal, map[string]string{"kind": string(m.Kind)})
	span.SetAttributes(attribute.Int64("movement.id", int64(m.ID)))
	e.log.WithFields(logrus.Fields{
		"movement_id": m.ID,
		"wine_id":     m.WineID,
		"kind":        m.Kind,
		"quantity":    m.Quantity,
		"unit_price":  m.UnitPriceAtTime.StringFixed(2),
		"trace_id":    tracing.ExtractTraceID(ctx),
	}).Info("记录流水")
	return m, nil
}

func (e *Engine) recordMovement(ctx context.Context, d inventory.MovementDraft) (*inventory.Movement, error) {
	if err := checkDraft(d); err != nil {
		return nil, err
	}

	unlock, err := e.locker.Lock(ctx, lockKey(d.WineID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 拿到锁之后不再响应取消，事务要么完整提交要么回滚
	ctx = context.WithoutCancel(ctx)

	var recorded *inventory.Movement
	err = e.uow.Transaction(ctx, func(ctx context.Context) error {
		w, err := e.wines.LockByID(ctx, d.WineID)
		if err != nil {
			return err
		}
		if !w.IsActive() {
			return &inventory.ConflictError{Entity: inventory.EntityWine, ID: w.ID, Reason: inventory.ReasonRetired}
		}
		if d.Kind == inventory.KindSale && d.Quantity > w.StockOnHand {
			return &inventory.InsufficientStockError{WineID: w.ID, Requested: d.Quantity, Available: w.StockOnHand}
		}
		if d.Kind == inventory.KindPurchase && !w.CanReceive(d.Quantity) {
			return &inventory.ConflictError{Entity: inventory.EntityWine, ID: w.ID, Reason: inventory.ReasonStockLimit}
		}

		price := w.DefaultPrice(d.Kind)
		if d.UnitPrice != nil {
			price = *d.UnitPrice
		}

		last, err := e.movements.LatestTimestamp(ctx, w.ID)
		if err != nil {
			return err
		}

		m := &inventory.Movement{
			WineID:          w.ID,
			Kind:            d.Kind,
			Quantity:        d.Quantity,
			UnitPriceAtTime: price,
			Note:            d.Note,
			CreatedAt:       inventory.StampTime(e.clock.Now(), last),
		}
		if err := e.movements.Append(ctx, m); err != nil {
			return err
		}
		if err := e.wines.ApplyStockDelta(ctx, w.ID, m.Delta()); err != nil {
			return err
		}

		recorded = m
		return nil
	})
	if err != nil {
		return nil, inventory.NewStorageError("record movement", err)
	}
	return recorded, nil
}

// BalanceOf 当前库存
func (e *Engine) BalanceOf(ctx context.Context, wineID uint) (int, error) {
	w, err := e.wines.FindByID(ctx, wineID)
	if err != nil {
		return 0, err
	}
	return w.StockOnHand, nil
}

// ListBelowThreshold 低于阈值的在售酒款
// 阈值为0的酒款不参与，结果按(库存-阈值)升序
func (e *Engine) ListBelowThreshold(ctx context.Context) ([]alert.Entry, error) {
	entries, err := e.activeEntries(ctx)
	if err != nil {
		return nil, err
	}

	below := alert.BelowThreshold(entries)
	metrics.SetGauge(metrics.LowStockWines, float64(len(below)))
	return below, nil
}

// Alerts 所有需要提醒的在售酒款(缺货和低库存)
func (e *Engine) Alerts(ctx context.Context) ([]alert.Alert, error) {
	entries, err := e.activeEntries(ctx)
	if err != nil {
		return nil, err
	}
	return alert.Evaluate(entries), nil
}

func (e *Engine) activeEntries(ctx context.Context) ([]alert.Entry, error) {
	wines, err := e.wines.List(ctx, inventory.ListParams{State: inventory.StateActive})
	if err != nil {
		return nil, err
	}
	entries := make([]alert.Entry, len(wines))
	for i, w := range wines {
		entries[i] = alert.EntryOf(w)
	}
	return entries, nil
}

// MovementHistory 某酒款的流水，最新的在前
// 已下架的酒款同样可以查询
func (e *Engine) MovementHistory(ctx context.Context, wineID uint) ([]*inventory.Movement, error) {
	if _, err := e.wines.FindByID(ctx, wineID); err != nil {
		return nil, err
	}
	return e.movements.List(ctx, inventory.MovementFilter{WineID: wineID})
}

// ListMovements 全部流水，最新的在前
// 可按酒款、类型、酒款名称/编码和时间区间过滤
func (e *Engine) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]*inventory.Movement, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return e.movements.List(ctx, filter)
}

// Verify 对账：按流水重新计算库存并与投影比较
func (e *Engine) Verify(ctx context.Context, wineID uint) (BalanceCheck, error) {
	unlock, err := e.locker.Lock(ctx, lockKey(wineID))
	if err != nil {
		return BalanceCheck{}, err
	}
	defer unlock()

	check := BalanceCheck{WineID: wineID}
	err = e.uow.Transaction(ctx, func(ctx context.Context) error {
		w, err := e.wines.FindByID(ctx, wineID)
		if err != nil {
			return err
		}
		sum, err := e.movements.SumByWine(ctx, wineID)
		if err != nil {
			return err
		}
		check.Projected = w.StockOnHand
		check.Recomputed = sum
		return nil
	})
	if err != nil {
		return BalanceCheck{}, inventory.NewStorageError("verify balance", err)
	}

	check.Consistent = check.Projected == check.Recomputed
	if !check.Consistent {
		metrics.IncCounter(metrics.StockVerifyMismatchTotal)
		e.log.WithFields(logrus.Fields{
			"wine_id":    wineID,
			"projected":  check.Projected,
			"recomputed": check.Recomputed,
		}).Error("库存投影与流水不一致")
	}
	return check, nil
}

// RetireWine 下架酒款(软删除)
// 已下架的酒款再次下架不报错
func (e *Engine) RetireWine(ctx context.Context, wineID uint) error {
	unlock, err := e.locker.Lock(ctx, lockKey(wineID))
	if err != nil {
		return err
	}
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	err = e.uow.Transaction(ctx, func(ctx context.Context) error {
		w, err := e.wines.LockByID(ctx, wineID)
		if err != nil {
			return err
		}
		changed, err := w.Retire(e.clock.Now())
		if err != nil || !changed {
			return err
		}
		return e.wines.Update(ctx, w)
	})
	if err != nil {
		return inventory.NewStorageError("retire wine", err)
	}

	e.log.WithField("wine_id", wineID).Info("酒款已下架")
	return nil
}

// HardDeleteWine 物理删除酒款
// 有流水的酒款返回ConflictError，只能下架
func (e *Engine) HardDeleteWine(ctx context.Context, wineID uint) error {
	unlock, err := e.locker.Lock(ctx, lockKey(wineID))
	if err != nil {
		return err
	}
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	err = e.uow.Transaction(ctx, func(ctx context.Context) error {
		if _, err := e.wines.LockByID(ctx, wineID); err != nil {
			return err
		}
		n, err := e.movements.CountByWine(ctx, wineID)
		if err != nil {
			return err
		}
		if n > 0 {
			return &inventory.ConflictError{Entity: inventory.EntityWine, ID: wineID, Reason: inventory.ReasonHasMovements}
		}
		return e.wines.Delete(ctx, wineID)
	})
	if err != nil {
		return inventory.NewStorageError("delete wine", err)
	}

	e.log.WithField("wine_id", wineID).Info("酒款已删除")
	return nil
}

func lockKey(wineID uint) string {
	return fmt.Sprintf("wine:%d", wineID)
}

// checkDraft 账本入口的基本约束
// 正常情况下输入已经过validation包规范化
func checkDraft(d inventory.MovementDraft) error {
	var errs inventory.ValidationErrors
	if d.WineID == 0 {
		errs = append(errs, inventory.ValidationError{Field: "wine_id", Reason: "must be greater than 0"})
	}
	if !d.Kind.IsValid() {
		errs = append(errs, inventory.ValidationError{Field: "kind", Reason: "must be one of [purchase sale]"})
	}
	switch {
	case d.Quantity <= 0:
		errs = append(errs, inventory.ValidationError{Field: "quantity", Reason: "must be greater than 0"})
	case d.Quantity > inventory.MaxMovementQuantity:
		errs = append(errs, inventory.ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be less than or equal to %d", inventory.MaxMovementQuantity)})
	}
	if d.UnitPrice != nil {
		switch {
		case d.UnitPrice.IsNegative():
			errs = append(errs, inventory.ValidationError{Field: "unit_price", Reason: "must be greater than or equal to 0"})
		case d.UnitPrice.GreaterThan(inventory.MaxPrice):
			errs = append(errs, inventory.ValidationError{Field: "unit_price", Reason: "must be less than or equal to " + inventory.MaxPriceText})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// rejectReason 被拒绝流水的指标标签
func rejectReason(err error) string {
	var (
		ve  *inventory.ValidationError
		ves inventory.ValidationErrors
		nf  *inventory.NotFoundError
		ins *inventory.InsufficientStockError
		ce  *inventory.ConflictError
		se  *inventory.StorageError
	)
	switch {
	case errors.As(err, &ves), errors.As(err, &ve):
		return "validation"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ins):
		return "insufficient_stock"
	case errors.As(err, &ce):
		switch ce.Reason {
		case inventory.ReasonRetired:
			return "retired"
		case inventory.ReasonStockLimit:
			return "stock_limit"
		}
		return "conflict"
	case errors.As(err, &se):
		return "storage"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "lock"
	}
}
