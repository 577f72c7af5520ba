package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/interface/http/dto"
	"github.com/xiebiao/winestock/pkg/response"
)

// AlertHandler 低库存提醒
type AlertHandler struct {
	engine *ledger.Engine
}

// NewAlertHandler 创建提醒处理器
func NewAlertHandler(engine *ledger.Engine) *AlertHandler {
	return &AlertHandler{engine: engine}
}

// List 所有缺货和低库存提醒
// @Summary      库存提醒
// @Description  缺货在前，其次按(库存-阈值)升序
// @Tags         提醒
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.AlertResponse}
// @Router       /api/v1/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.engine.Alerts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewAlertList(alerts))
}

// BelowThreshold 库存不高于阈值的酒款
// @Summary      低于阈值
// @Description  只包含阈值大于0的在售酒款
// @Tags         提醒
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.StockEntryResponse}
// @Router       /api/v1/alerts/below-threshold [get]
func (h *AlertHandler) BelowThreshold(c *gin.Context) {
	entries, err := h.engine.ListBelowThreshold(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewStockEntryList(entries))
}
