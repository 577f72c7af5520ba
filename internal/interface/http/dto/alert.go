package dto

import "github.com/xiebiao/winestock/internal/domain/alert"

// StockEntryResponse 低库存条目
type StockEntryResponse struct {
	WineID    uint   `json:"wine_id" example:"3"`
	Code      string `json:"code" example:"AR-MALB-003"`
	Name      string `json:"name" example:"Trapiche Oak Cask Malbec"`
	Balance   int    `json:"balance" example:"4"`
	Threshold int    `json:"threshold" example:"5"`
	Shortage  int    `json:"shortage" example:"-1"` // 库存-阈值，越小越紧急
}

// AlertResponse 库存提醒
type AlertResponse struct {
	StockEntryResponse
	Status string `json:"status" example:"low"` // low | out_of_stock
}

// NewStockEntryList 低库存列表
func NewStockEntryList(entries []alert.Entry) []*StockEntryResponse {
	out := make([]*StockEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newStockEntry(e))
	}
	return out
}

// NewAlertList 提醒列表
func NewAlertList(alerts []alert.Alert) []*AlertResponse {
	out := make([]*AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, &AlertResponse{StockEntryResponse: *newStockEntry(a.Entry), Status: a.Status.String()})
	}
	return out
}

func newStockEntry(e alert.Entry) *StockEntryResponse {
	return &StockEntryResponse{
		WineID:    e.Wine.ID,
		Code:      e.Wine.Code,
		Name:      e.Wine.Name,
		Balance:   e.Balance,
		Threshold: e.Threshold,
		Shortage:  e.Shortage(),
	}
}
