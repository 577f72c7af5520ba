// Package validator 基于go-playground/validator的结构体校验
//
// 与gin的binding不同，这里不会在第一个错误处停止，
// 而是把每个违规字段都收集出来，方便调用方一次性提示全部问题。
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldError 单个字段的校验失败
type FieldError struct {
	Field  string // json字段名
	Tag    string // 失败的规则，如 required、min
	Param  string // 规则参数，如 min=2 中的 2
	Reason string // 可读的失败原因
}

// Validator 校验器
type Validator struct {
	validate *validator.Validate
}

// New 创建校验器
// 内置规则之外注册:
// - vintage: 年份在 0 到今年之间
// - decimal.Decimal 按数值参与 gte/lte 等比较
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// 使用json tag作为字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("vintage", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= 0 && year <= int64(time.Now().Year())
	})

	return &Validator{validate: v}
}

// RegisterValidation 注册自定义规则
func (v *Validator) RegisterValidation(tag string, fn func(value string) bool) error {
	return v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

// Struct 校验结构体，返回全部字段错误(无错误时返回nil)
func (v *Validator) Struct(s interface{}) ([]FieldError, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		// InvalidValidationError等编程错误
		return nil, err
	}

	out := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{
			Field:  fe.Field(),
			Tag:    fe.Tag(),
			Param:  fe.Param(),
			Reason: reason(fe),
		})
	}
	return out, nil
}

// reason 生成可读的失败原因
func reason(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must have at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must have at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "vintage":
		return fmt.Sprintf("must be between 0 and %d", time.Now().Year())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
