package dto

import "github.com/xiebiao/winestock/internal/domain/inventory"

// ShopRequest 修改店铺信息
type ShopRequest struct {
	Name     string `json:"name" example:"WINE STOCK"`
	LogoPath string `json:"logo_path" example:"static/logo.png"`
}

// ShopResponse 店铺信息
type ShopResponse struct {
	Name     string `json:"name" example:"WINE STOCK"`
	LogoPath string `json:"logo_path,omitempty" example:"static/logo.png"`
}

// NewShopResponse 构建店铺响应
func NewShopResponse(s *inventory.Shop) *ShopResponse {
	return &ShopResponse{Name: s.Name, LogoPath: s.LogoPath}
}
