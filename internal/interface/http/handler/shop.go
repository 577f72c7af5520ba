package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/winestock/internal/application/catalog"
	"github.com/xiebiao/winestock/internal/interface/http/dto"
	"github.com/xiebiao/winestock/pkg/response"
)

// ShopHandler 店铺信息和参考数据
type ShopHandler struct {
	catalog *catalog.Service
}

// NewShopHandler 创建店铺处理器
func NewShopHandler(catalog *catalog.Service) *ShopHandler {
	return &ShopHandler{catalog: catalog}
}

// Get 店铺信息
// @Summary      店铺信息
// @Tags         店铺
// @Produce      json
// @Success      200 {object} response.Response{data=dto.ShopResponse}
// @Router       /api/v1/shop [get]
func (h *ShopHandler) Get(c *gin.Context) {
	shop, err := h.catalog.Shop(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewShopResponse(shop))
}

// Update 修改店铺名称和logo
// @Summary      修改店铺
// @Tags         店铺
// @Accept       json
// @Produce      json
// @Param        request body dto.ShopRequest true "店铺信息"
// @Success      200 {object} response.Response{data=dto.ShopResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/shop [put]
func (h *ShopHandler) Update(c *gin.Context) {
	var req dto.ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	shop, err := h.catalog.RenameShop(c.Request.Context(), req.Name, req.LogoPath)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.NewShopResponse(shop))
}

// Reference 颜色、类型、品种的可选值
// @Summary      参考数据
// @Tags         店铺
// @Produce      json
// @Success      200 {object} response.Response{data=inventory.ReferenceData}
// @Router       /api/v1/reference [get]
func (h *ShopHandler) Reference(c *gin.Context) {
	response.Success(c, h.catalog.ReferenceData())
}
