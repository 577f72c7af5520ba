package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/application/validation"
	"github.com/xiebiao/winestock/internal/interface/http/dto"
	"github.com/xiebiao/winestock/pkg/response"
)

// MovementHandler 出入库流水HTTP处理器
type MovementHandler struct {
	engine *ledger.Engine
}

// NewMovementHandler 创建流水处理器
func NewMovementHandler(engine *ledger.Engine) *MovementHandler {
	return &MovementHandler{engine: engine}
}

// Record 记录一笔进货或销售
// @Summary      记录流水
// @Description  同一酒款的记账串行执行；销售数量不能超过当前库存
// @Tags         库存
// @Accept       json
// @Produce      json
// @Param        request body dto.MovementRequest true "流水信息"
// @Success      200 {object} response.Response{data=dto.MovementResponse}
// @Failure      400 {object} response.Response{data=[]inventory.ValidationError} "参数错误"
// @Failure      404 {object} response.Response "酒款不存在"
// @Failure      409 {object} response.Response "库存不足或酒款已下架"
// @Router       /api/v1/movements [post]
func (h *MovementHandler) Record(c *gin.Context) {
	var req dto.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	draft, err := validation.NormalizeMovement(req.ToInput())
	if err != nil {
		fail(c, err)
		return
	}

	m, err := h.engine.RecordMovement(c.Request.Context(), draft)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewMovementResponse(m))
}

// List 全部流水
// @Summary      流水列表
// @Description  按时间倒序，可按酒款、类型、酒款名称/编码和日期区间过滤
// @Tags         库存
// @Produce      json
// @Param        wine_id query int false "酒款ID"
// @Param        kind query string false "purchase | sale"
// @Param        name query string false "酒款名称包含"
// @Param        code query string false "酒款编码包含"
// @Param        from query string false "起始日期 YYYY-MM-DD(含)"
// @Param        to query string false "结束日期 YYYY-MM-DD(含)"
// @Success      200 {object} response.Response{data=[]dto.MovementResponse}
// @Router       /api/v1/movements [get]
func (h *MovementHandler) List(c *gin.Context) {
	var req dto.ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	filter, err := req.Filter()
	if err != nil {
		fail(c, err)
		return
	}

	movements, err := h.engine.ListMovements(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewMovementList(movements))
}
