package inventory

import "strings"

// 参考数据:颜色、类型、葡萄品种
var (
	Colours   = []string{"red", "rosé", "orange", "white", "other"}
	Styles    = []string{"dessert", "fortified", "sparkling", "still", "other"}
	Varietals = []string{
		"baga", "cabernet sauvignon", "grenache", "hondarrabi zuri", "malbec",
		"moscato bianco", "tinta roriz", "torrontés", "touriga nacional", "other",
	}
)

// DefaultShopName 默认店铺名称
const DefaultShopName = "WINE STOCK"

// Shop 店铺信息(单例)
type Shop struct {
	ID       uint
	Name     string
	LogoPath string
}

// ReferenceData 前端下拉选项
type ReferenceData struct {
	Colours   []string `json:"colours"`
	Styles    []string `json:"styles"`
	Varietals []string `json:"varietals"`
}

// References 返回参考数据的副本
func References() ReferenceData {
	return ReferenceData{
		Colours:   append([]string(nil), Colours...),
		Styles:    append([]string(nil), Styles...),
		Varietals: append([]string(nil), Varietals...),
	}
}

// IsKnown 判断取值是否在列表中(不区分大小写)
func IsKnown(values []string, v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
