// Package validation 输入校验层
//
// 纯函数：给定酒款或流水的原始输入，返回规范化后的值，
// 或者返回 inventory.ValidationErrors(每个违规字段一条，不会在第一个错误处停止)。
package validation

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/pkg/validator"
)

// 文本长度上限
const (
	MaxTextLen = 100
	MaxCodeLen = 40
	MaxNoteLen = 255
)

var (
	once sync.Once
	v    *validator.Validator
)

// instance 懒加载校验器并注册参考数据规则
func instance() *validator.Validator {
	once.Do(func() {
		v = validator.New()
		_ = v.RegisterValidation("colour", func(s string) bool { return inventory.IsKnown(inventory.Colours, s) })
		_ = v.RegisterValidation("style", func(s string) bool { return inventory.IsKnown(inventory.Styles, s) })
		_ = v.RegisterValidation("varietal", func(s string) bool { return inventory.IsKnown(inventory.Varietals, s) })
	})
	return v
}

// WineInput 酒款原始输入
// 价格使用字符串，由本层解析为decimal
type WineInput struct {
	Name              string
	Winery            string
	Vintage           int
	Region            string
	Varietal          string
	Colour            string
	Style             string
	Code              string
	UnitPrice         string
	PurchasePrice     string
	MinStockThreshold int
}

// wineRules 规范化之后参与校验的字段
type wineRules struct {
	Name              string `json:"name" validate:"required,min=2,max=100"`
	Winery            string `json:"winery" validate:"required,min=2,max=100"`
	Vintage           int    `json:"vintage" validate:"vintage"`
	Region            string `json:"region" validate:"omitempty,min=2,max=100"`
	Varietal          string `json:"varietal" validate:"omitempty,varietal"`
	Colour            string `json:"colour" validate:"required,colour"`
	Style             string `json:"style" validate:"required,style"`
	Code              string `json:"code" validate:"required,min=2,max=40"`
	MinStockThreshold int    `json:"min_stock_threshold" validate:"gte=0"`

	// 价格先解析再按数值校验，上限与 inventory.MaxPrice 一致
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"gte=0,lte=99999999.99"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"gte=0,lte=99999999.99"`
}

// NormalizeWine 校验并规范化酒款输入
// - 文本去首尾空白
// - 颜色、类型、品种转小写并校验是否在参考数据中
// - 编码转大写，产区转为首字母大写
// - 价格必须是 0 到 99999999.99 之间的数字，"" 和 "." 视为0
func NormalizeWine(in WineInput) (inventory.WineDraft, error) {
	unitPrice, unitErr := parsePrice("unit_price", in.UnitPrice)
	purchasePrice, purchaseErr := parsePrice("purchase_price", in.PurchasePrice)

	rules := wineRules{
		Name:              strings.TrimSpace(in.Name),
		Winery:            strings.TrimSpace(in.Winery),
		Vintage:           in.Vintage,
		Region:            strings.TrimSpace(in.Region),
		Varietal:          strings.ToLower(strings.TrimSpace(in.Varietal)),
		Colour:            strings.ToLower(strings.TrimSpace(in.Colour)),
		Style:             strings.ToLower(strings.TrimSpace(in.Style)),
		Code:              strings.ToUpper(strings.TrimSpace(in.Code)),
		MinStockThreshold: in.MinStockThreshold,
		UnitPrice:         unitPrice,
		PurchasePrice:     purchasePrice,
	}

	errs, err := collect(rules)
	if err != nil {
		return inventory.WineDraft{}, err
	}
	errs = appendFieldErrors(errs, unitErr, purchaseErr)

	if len(errs) > 0 {
		return inventory.WineDraft{}, errs
	}

	if rules.Region != "" {
		rules.Region = cases.Title(language.Und).String(rules.Region)
	}

	return inventory.WineDraft{
		Name:              rules.Name,
		Winery:            rules.Winery,
		Vintage:           rules.Vintage,
		Region:            rules.Region,
		Varietal:          rules.Varietal,
		Colour:            rules.Colour,
		Style:             rules.Style,
		Code:              rules.Code,
		UnitPrice:         rules.UnitPrice,
		PurchasePrice:     rules.PurchasePrice,
		MinStockThreshold: rules.MinStockThreshold,
	}, nil
}

// MovementInput 流水原始输入
// UnitPrice为空表示使用酒款默认价格
type MovementInput struct {
	WineID    uint
	Kind      string
	Quantity  int
	UnitPrice string
	Note      string
}

type movementRules struct {
	WineID    uint             `json:"wine_id" validate:"gt=0"`
	Kind      string           `json:"kind" validate:"required,oneof=purchase sale"`
	Quantity  int              `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0,lte=99999999.99"`
	Note      string           `json:"note" validate:"max=255"`
}

// NormalizeMovement 校验并规范化流水输入
// 数量必须为 1 到 inventory.MaxMovementQuantity 之间的整数，方向只由类型表达
func NormalizeMovement(in MovementInput) (inventory.MovementDraft, error) {
	var (
		price    *decimal.Decimal
		priceErr *inventory.ValidationError
	)
	if strings.TrimSpace(in.UnitPrice) != "" {
		var p decimal.Decimal
		if p, priceErr = parsePrice("unit_price", in.UnitPrice); priceErr == nil {
			price = &p
		}
	}

	rules := movementRules{
		WineID:    in.WineID,
		Kind:      strings.ToLower(strings.TrimSpace(in.Kind)),
		Quantity:  in.Quantity,
		UnitPrice: price,
		Note:      strings.TrimSpace(in.Note),
	}

	errs, err := collect(rules)
	if err != nil {
		return inventory.MovementDraft{}, err
	}
	errs = appendFieldErrors(errs, priceErr)

	if len(errs) > 0 {
		return inventory.MovementDraft{}, errs
	}

	return inventory.MovementDraft{
		WineID:    rules.WineID,
		Kind:      inventory.Kind(rules.Kind),
		Quantity:  rules.Quantity,
		UnitPrice: rules.UnitPrice,
		Note:      rules.Note,
	}, nil
}

// collect 运行结构体校验并转换为领域错误
func collect(s interface{}) (inventory.ValidationErrors, error) {
	fieldErrs, err := instance().Struct(s)
	if err != nil {
		return nil, err
	}
	errs := make(inventory.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, inventory.ValidationError{Field: fe.Field, Reason: fe.Reason})
	}
	return errs, nil
}

func appendFieldErrors(errs inventory.ValidationErrors, fes ...*inventory.ValidationError) inventory.ValidationErrors {
	for _, fe := range fes {
		if fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// parsePrice 解析价格，保留两位小数
// 只检查格式，范围由结构体tag校验
func parsePrice(field, raw string) (decimal.Decimal, *inventory.ValidationError) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "." {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &inventory.ValidationError{Field: field, Reason: "must be a decimal number"}
	}
	return d.Round(2), nil
}
