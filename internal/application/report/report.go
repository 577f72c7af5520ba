package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/winestock/internal/domain/alert"
	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// MovementLister 读取账本流水
type MovementLister interface {
	ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]*inventory.Movement, error)
}

// Service 报表服务(只读)
type Service struct {
	movements MovementLister
	wines     inventory.WineRepository
	shops     inventory.ShopRepository
	clock     inventory.Clock
}

// NewService 创建报表服务
func NewService(movements MovementLister, wines inventory.WineRepository, shops inventory.ShopRepository, clock inventory.Clock) *Service {
	return &Service{movements: movements, wines: wines, shops: shops, clock: clock}
}

// MovementRow 流水报表的一行
type MovementRow struct {
	MovementID uint            `json:"movement_id"`
	Date       time.Time       `json:"date"`
	WineID     uint            `json:"wine_id"`
	WineCode   string          `json:"wine_code"`
	WineName   string          `json:"wine_name"`
	Kind       inventory.Kind  `json:"kind"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Note       string          `json:"note,omitempty"`
}

// MovementReport 流水报表
// Kind为空表示进货和销售都包含，From/To为空表示不限时间
type MovementReport struct {
	ShopName      string          `json:"shop_name"`
	Kind          inventory.Kind  `json:"kind,omitempty"`
	From          *time.Time      `json:"from,omitempty"`
	To            *time.Time      `json:"to,omitempty"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Rows          []MovementRow   `json:"rows"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// StockRow 库存汇总的一行
type StockRow struct {
	WineID     uint            `json:"wine_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Vintage    int             `json:"vintage"`
	Balance    int             `json:"balance"`
	Threshold  int             `json:"threshold"`
	Status     alert.Status    `json:"status"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// StockSummary 在售酒款的库存汇总
type StockSummary struct {
	ShopName     string          `json:"shop_name"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Rows         []StockRow      `json:"rows"`
	TotalBottles int             `json:"total_bottles"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// MovementReport 生成流水报表，按时间倒序
// filter.Kind为purchase或sale时只包含对应类型，为空时全部包含
func (s *Service) MovementReport(ctx context.Context, filter inventory.MovementFilter) (*MovementReport, error) {
	movements, err := s.movements.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}

	wines, err := s.wineIndex(ctx)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.Get(ctx)
	if err != nil {
		return nil, err
	}

	r := &MovementReport{
		ShopName:    shop.Name,
		Kind:        filter.Kind,
		GeneratedAt: s.clock.Now(),
		Rows:        make([]MovementRow, 0, len(movements)),
		TotalAmount: decimal.Zero,
	}
	if !filter.From.IsZero() {
		r.From = &filter.From
	}
	if !filter.To.IsZero() {
		r.To = &filter.To
	}
	for _, m := range movements {
		row := MovementRow{
			MovementID: m.ID,
			Date:       m.CreatedAt,
			WineID:     m.WineID,
			Kind:       m.Kind,
			Quantity:   m.Quantity,
			UnitPrice:  m.UnitPriceAtTime,
			Subtotal:   m.Subtotal(),
			Note:       m.Note,
		}
		if w, ok := wines[m.WineID]; ok {
			row.WineCode = w.Code
			row.WineName = w.Name
		}
		r.Rows = append(r.Rows, row)
		r.TotalQuantity += row.Quantity
		r.TotalAmount = r.TotalAmount.Add(row.Subtotal)
	}
	return r, nil
}

// StockSummary 生成在售酒款的库存汇总，按名称排序
func (s *Service) StockSummary(ctx context.Context) (*StockSummary, error) {
	wines, err := s.wines.List(ctx, inventory.ListParams{State: inventory.StateActive, OrderBy: "name"})
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.Get(ctx)
	if err != nil {
		return nil, err
	}

	summary := &StockSummary{
		ShopName:    shop.Name,
		GeneratedAt: s.clock.Now(),
		Rows:        make([]StockRow, 0, len(wines)),
		TotalValue:  decimal.Zero,
	}
	for _, w := range wines {
		row := StockRow{
			WineID:     w.ID,
			Code:       w.Code,
			Name:       w.Name,
			Vintage:    w.Vintage,
			Balance:    w.StockOnHand,
			Threshold:  w.MinStockThreshold,
			Status:     alert.Classify(w.StockOnHand, w.MinStockThreshold),
			UnitPrice:  w.UnitPrice,
			StockValue: w.StockValue(),
		}
		summary.Rows = append(summary.Rows, row)
		summary.TotalBottles += row.Balance
		summary.TotalValue = summary.TotalValue.Add(row.StockValue)
	}
	return summary, nil
}

// wineIndex 所有酒款(含已下架)，流水报表需要显示已下架酒款的名称
func (s *Service) wineIndex(ctx context.Context) (map[uint]*inventory.Wine, error) {
	wines, err := s.wines.List(ctx, inventory.ListParams{})
	if err != nil {
		return nil, err
	}
	index := make(map[uint]*inventory.Wine, len(wines))
	for _, w := range wines {
		index[w.ID] = w
	}
	return index, nil
}
