package dto

import (
	"time"

	"github.com/xiebiao/winestock/internal/application/validation"
	"github.com/xiebiao/winestock/internal/domain/alert"
	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// TimeLayout 响应中的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// WineRequest 新建/修改酒款请求
// 不使用binding校验，所有字段交给validation统一校验，一次返回全部错误
// 价格使用字符串，"" 和 "." 视为0
type WineRequest struct {
	Name              string `json:"name" example:"Catena Zapata Malbec"`
	Winery            string `json:"winery" example:"Catena Zapata"`
	Vintage           int    `json:"vintage" example:"2019"`
	Region            string `json:"region" example:"Mendoza, Argentina"`
	Varietal          string `json:"varietal" example:"malbec"`
	Colour            string `json:"colour" example:"red"`
	Style             string `json:"style" example:"still"`
	Code              string `json:"code" example:"AR-MALB-001"`
	UnitPrice         string `json:"unit_price" example:"65.23"`
	PurchasePrice     string `json:"purchase_price" example:"20.50"`
	MinStockThreshold int    `json:"min_stock_threshold" example:"5"`
}

// ToInput 转换为校验层输入
func (r *WineRequest) ToInput() validation.WineInput {
	return validation.WineInput{
		Name:              r.Name,
		Winery:            r.Winery,
		Vintage:           r.Vintage,
		Region:            r.Region,
		Varietal:          r.Varietal,
		Colour:            r.Colour,
		Style:             r.Style,
		Code:              r.Code,
		UnitPrice:         r.UnitPrice,
		PurchasePrice:     r.PurchasePrice,
		MinStockThreshold: r.MinStockThreshold,
	}
}

// ListWinesRequest 酒款列表查询
// name/code/winery/region 为包含匹配，colour/style/varietal/vintage 为精确匹配
type ListWinesRequest struct {
	State    string `form:"state" binding:"omitempty,oneof=active retired all" example:"active"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"malbec"`
	OrderBy  string `form:"order_by" example:"name"`
	Name     string `form:"name" binding:"omitempty,max=100" example:"reserva"`
	Code     string `form:"code" binding:"omitempty,max=40" example:"AR-"`
	Winery   string `form:"winery" binding:"omitempty,max=100" example:"catena"`
	Region   string `form:"region" binding:"omitempty,max=100" example:"mendoza"`
	Colour   string `form:"colour" example:"red"`
	Style    string `form:"style" example:"still"`
	Varietal string `form:"varietal" example:"malbec"`
	Vintage  int    `form:"vintage" binding:"omitempty,gte=0" example:"2019"`
}

// Params 转换为仓储查询参数，state默认只看在售
func (r *ListWinesRequest) Params() inventory.ListParams {
	p := inventory.ListParams{
		State:    inventory.StateActive,
		Keyword:  r.Keyword,
		OrderBy:  r.OrderBy,
		Name:     r.Name,
		Code:     r.Code,
		Winery:   r.Winery,
		Region:   r.Region,
		Colour:   r.Colour,
		Style:    r.Style,
		Varietal: r.Varietal,
		Vintage:  r.Vintage,
	}
	switch r.State {
	case "all":
		p.State = 0
	case "retired":
		p.State = inventory.StateRetired
	}
	return p
}

// WineResponse 酒款响应
type WineResponse struct {
	ID                uint   `json:"id" example:"1"`
	Name              string `json:"name" example:"Catena Zapata Malbec"`
	Winery            string `json:"winery" example:"Catena Zapata"`
	Vintage           int    `json:"vintage" example:"2019"`
	Region            string `json:"region" example:"Mendoza, Argentina"`
	Varietal          string `json:"varietal" example:"malbec"`
	Colour            string `json:"colour" example:"red"`
	Style             string `json:"style" example:"still"`
	Code              string `json:"code" example:"AR-MALB-001"`
	UnitPrice         string `json:"unit_price" example:"65.23"`
	PurchasePrice     string `json:"purchase_price" example:"20.50"`
	MinStockThreshold int    `json:"min_stock_threshold" example:"5"`
	State             string `json:"state" example:"active"`
	StockOnHand       int    `json:"stock_on_hand" example:"12"`
	StockStatus       string `json:"stock_status" example:"ok"` // ok | low | out_of_stock
	StockValue        string `json:"stock_value" example:"782.76"`
	CreatedAt         string `json:"created_at" example:"2024-06-01 10:30:00"`
	UpdatedAt         string `json:"updated_at" example:"2024-06-01 10:30:00"`
}

// NewWineResponse 从实体构建响应
func NewWineResponse(w *inventory.Wine) *WineResponse {
	return &WineResponse{
		ID:                w.ID,
		Name:              w.Name,
		Winery:            w.Winery,
		Vintage:           w.Vintage,
		Region:            w.Region,
		Varietal:          w.Varietal,
		Colour:            w.Colour,
		Style:             w.Style,
		Code:              w.Code,
		UnitPrice:         w.UnitPrice.StringFixed(2),
		PurchasePrice:     w.PurchasePrice.StringFixed(2),
		MinStockThreshold: w.MinStockThreshold,
		State:             w.State.String(),
		StockOnHand:       w.StockOnHand,
		StockStatus:       alert.Classify(w.StockOnHand, w.MinStockThreshold).String(),
		StockValue:        w.StockValue().StringFixed(2),
		CreatedAt:         formatTime(w.CreatedAt),
		UpdatedAt:         formatTime(w.UpdatedAt),
	}
}

// NewWineList 列表响应
func NewWineList(wines []*inventory.Wine) []*WineResponse {
	out := make([]*WineResponse, 0, len(wines))
	for _, w := range wines {
		out = append(out, NewWineResponse(w))
	}
	return out
}

// BalanceResponse 库存余额
type BalanceResponse struct {
	WineID  uint `json:"wine_id" example:"1"`
	Balance int  `json:"balance" example:"12"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}
