package dto

import (
	"strings"
	"time"

	"github.com/xiebiao/winestock/internal/application/validation"
	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// MovementRequest 记录出入库流水请求
// unit_price为空时使用酒款默认价格(进货用进价，销售用售价)
type MovementRequest struct {
	WineID    uint   `json:"wine_id" example:"1"`
	Kind      string `json:"kind" example:"sale"` // purchase | sale
	Quantity  int    `json:"quantity" example:"2"`
	UnitPrice string `json:"unit_price" example:"65.23"`
	Note      string `json:"note" example:"walk-in customer"`
}

// ToInput 转换为校验层输入
func (r *MovementRequest) ToInput() validation.MovementInput {
	return validation.MovementInput{
		WineID:    r.WineID,
		Kind:      r.Kind,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		Note:      r.Note,
	}
}

// DateLayout 查询参数中的日期格式
const DateLayout = "2006-01-02"

// MovementQuery 流水过滤条件，流水列表和流水报表共用
// name/code 为包含匹配，from/to 为日期且都包含当天
type MovementQuery struct {
	WineID uint   `form:"wine_id" example:"1"`
	Kind   string `form:"kind" example:"sale"`
	Name   string `form:"name" binding:"omitempty,max=100" example:"malbec"`
	Code   string `form:"code" binding:"omitempty,max=40" example:"AR-MALB"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02" example:"2024-06-01"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02" example:"2024-06-30"`
}

// Filter 转换为账本查询条件
// 日期按本地时区解析，to 转换为次日零点(不含)
func (q *MovementQuery) Filter() (inventory.MovementFilter, error) {
	f := inventory.MovementFilter{
		WineID:   q.WineID,
		Kind:     inventory.Kind(strings.ToLower(strings.TrimSpace(q.Kind))),
		WineName: strings.TrimSpace(q.Name),
		WineCode: strings.TrimSpace(q.Code),
	}

	var errs inventory.ValidationErrors
	if q.From != "" {
		from, err := time.ParseInLocation(DateLayout, q.From, time.Local)
		if err != nil {
			errs = append(errs, inventory.ValidationError{Field: "from", Reason: "must be a date (YYYY-MM-DD)"})
		}
		f.From = from
	}
	if q.To != "" {
		to, err := time.ParseInLocation(DateLayout, q.To, time.Local)
		if err != nil {
			errs = append(errs, inventory.ValidationError{Field: "to", Reason: "must be a date (YYYY-MM-DD)"})
		} else {
			f.To = to.AddDate(0, 0, 1)
		}
	}
	if len(errs) > 0 {
		return inventory.MovementFilter{}, errs
	}
	return f, nil
}

// ListMovementsRequest 流水查询
type ListMovementsRequest struct {
	MovementQuery
}

// MovementResponse 流水响应
type MovementResponse struct {
	ID        uint   `json:"id" example:"1"`
	WineID    uint   `json:"wine_id" example:"1"`
	Kind      string `json:"kind" example:"sale"`
	Quantity  int    `json:"quantity" example:"2"`
	UnitPrice string `json:"unit_price" example:"65.23"`
	Subtotal  string `json:"subtotal" example:"130.46"`
	Note      string `json:"note,omitempty" example:"walk-in customer"`
	CreatedAt string `json:"created_at" example:"2024-06-01 10:30:00"`
}

// NewMovementResponse 从流水构建响应
func NewMovementResponse(m *inventory.Movement) *MovementResponse {
	return &MovementResponse{
		ID:        m.ID,
		WineID:    m.WineID,
		Kind:      string(m.Kind),
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPriceAtTime.StringFixed(2),
		Subtotal:  m.Subtotal().StringFixed(2),
		Note:      m.Note,
		CreatedAt: formatTime(m.CreatedAt),
	}
}

// NewMovementList 列表响应
func NewMovementList(movements []*inventory.Movement) []*MovementResponse {
	out := make([]*MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, NewMovementResponse(m))
	}
	return out
}
