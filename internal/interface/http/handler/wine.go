package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/winestock/internal/application/catalog"
	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/interface/http/dto"
	"github.com/xiebiao/winestock/pkg/response"
)

// WineHandler 酒款HTTP处理器
// 目录信息走catalog，库存和生命周期走ledger
type WineHandler struct {
	catalog *catalog.Service
	engine  *ledger.Engine
}

// NewWineHandler 创建酒款处理器
func NewWineHandler(catalog *catalog.Service, engine *ledger.Engine) *WineHandler {
	return &WineHandler{catalog: catalog, engine: engine}
}

// Create 新建酒款
// @Summary      新建酒款
// @Description  新酒款库存为0，期初库存需要单独记一笔进货
// @Tags         酒款
// @Accept       json
// @Produce      json
// @Param        request body dto.WineRequest true "酒款信息"
// @Success      200 {object} response.Response{data=dto.WineResponse}
// @Failure      400 {object} response.Response{data=[]inventory.ValidationError} "参数错误"
// @Failure      409 {object} response.Response "编码已存在"
// @Router       /api/v1/wines [post]
func (h *WineHandler) Create(c *gin.Context) {
	var req dto.WineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	w, err := h.catalog.CreateWine(c.Request.Context(), req.ToInput())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewWineResponse(w))
}

// List 酒款列表
// @Summary      酒款列表
// @Tags         酒款
// @Produce      json
// @Param        state query string false "active | retired | all，默认active"
// @Param        keyword query string false "按名称、酒庄、编码搜索"
// @Param        order_by query string false "name | code | vintage | stock"
// @Param        name query string false "名称包含"
// @Param        code query string false "编码包含"
// @Param        winery query string false "酒庄包含"
// @Param        region query string false "产区包含"
// @Param        colour query string false "颜色"
// @Param        style query string false "类型"
// @Param        varietal query string false "品种"
// @Param        vintage query int false "年份"
// @Success      200 {object} response.Response{data=[]dto.WineResponse}
// @Router       /api/v1/wines [get]
func (h *WineHandler) List(c *gin.Context) {
	var req dto.ListWinesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	wines, err := h.catalog.ListWines(c.Request.Context(), req.Params())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewWineList(wines))
}

// Get 酒款详情
// @Summary      酒款详情
// @Tags         酒款
// @Produce      json
// @Param        id path int true "酒款ID"
// @Success      200 {object} response.Response{data=dto.WineResponse}
// @Failure      404 {object} response.Response "酒款不存在"
// @Router       /api/v1/wines/{id} [get]
func (h *WineHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	w, err := h.catalog.GetWine(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewWineResponse(w))
}

// Update 修改酒款
// @Summary      修改酒款
// @Description  只修改描述信息、价格和阈值，库存只能通过流水变化
// @Tags         酒款
// @Accept       json
// @Produce      json
// @Param        id path int true "酒款ID"
// @Param        request body dto.WineRequest true "酒款信息"
// @Success      200 {object} response.Response{data=dto.WineResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "酒款不存在"
// @Router       /api/v1/wines/{id} [put]
func (h *WineHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.WineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	w, err := h.catalog.UpdateWine(c.Request.Context(), id, req.ToInput())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewWineResponse(w))
}

// Delete 物理删除酒款
// @Summary      删除酒款
// @Description  有流水的酒款不能删除，只能下架
// @Tags         酒款
// @Produce      json
// @Param        id path int true "酒款ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "酒款不存在"
// @Failure      409 {object} response.Response "存在流水"
// @Router       /api/v1/wines/{id} [delete]
func (h *WineHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.engine.HardDeleteWine(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Retire 下架酒款
// @Summary      下架酒款
// @Description  幂等；下架后保留历史流水，不能再记账
// @Tags         酒款
// @Produce      json
// @Param        id path int true "酒款ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "酒款不存在"
// @Router       /api/v1/wines/{id}/retire [post]
func (h *WineHandler) Retire(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.engine.RetireWine(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Balance 当前库存
// @Summary      当前库存
// @Tags         库存
// @Produce      json
// @Param        id path int true "酒款ID"
// @Success      200 {object} response.Response{data=dto.BalanceResponse}
// @Failure      404 {object} response.Response "酒款不存在"
// @Router       /api/v1/wines/{id}/balance [get]
func (h *WineHandler) Balance(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	balance, err := h.engine.BalanceOf(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, &dto.BalanceResponse{WineID: id, Balance: balance})
}

// Movements 酒款的流水历史
// @Summary      酒款流水
// @Description  按时间倒序，已下架酒款也可查询
// @Tags         库存
// @Produce      json
// @Param        id path int true "酒款ID"
// @Success      200 {object} response.Response{data=[]dto.MovementResponse}
// @Failure      404 {object} response.Response "酒款不存在"
// @Router       /api/v1/wines/{id}/movements [get]
func (h *WineHandler) Movements(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	movements, err := h.engine.MovementHistory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewMovementList(movements))
}

// Verify 库存对账
// @Summary      库存对账
// @Description  用流水重新计算库存，与库存投影比对
// @Tags         库存
// @Produce      json
// @Param        id path int true "酒款ID"
// @Success      200 {object} response.Response{data=ledger.BalanceCheck}
// @Failure      404 {object} response.Response "酒款不存在"
// @Router       /api/v1/wines/{id}/verify [get]
func (h *WineHandler) Verify(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	check, err := h.engine.Verify(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, check)
}
