package inventory

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/xiebiao/winestock/pkg/errors"
)

// 领域错误定义
//
// 分类:
// - ValidationError: 输入格式/范围错误，可重新输入
// - NotFoundError: 引用了不存在的酒款
// - InsufficientStockError: 销售数量超过库存(业务规则，不是系统故障)
// - ConflictError: 非法的删除或状态转换，或进货后库存超过上限
// - StorageError: 事务或连接失败，本次操作视为失败且保证没有部分写入
//
// 每个错误都通过Unwrap暴露一个带业务码的AppError，供response.Error渲染

// ValidationError 单个字段的校验失败
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Unwrap 映射为参数错误
func (e *ValidationError) Unwrap() error {
	return apperrors.New(apperrors.ErrCodeInvalidParams, e.Error())
}

// ValidationErrors 聚合的校验错误，每个违规字段一条
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i := range v {
		parts[i] = v[i].Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap 映射为参数错误
func (v ValidationErrors) Unwrap() error {
	return apperrors.New(apperrors.ErrCodeInvalidParams, "参数错误: "+v.Error())
}

// Has 是否包含指定字段的错误
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// NotFoundError 资源不存在
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d 不存在", e.Entity, e.ID)
}

// Unwrap 映射为资源不存在错误
func (e *NotFoundError) Unwrap() error {
	code := apperrors.ErrCodeNotFound
	switch e.Entity {
	case EntityWine:
		code = apperrors.ErrCodeWineNotFound
	case EntityMovement:
		code = apperrors.ErrCodeMovementNotFound
	}
	return apperrors.New(code, e.Error())
}

// InsufficientStockError 库存不足
type InsufficientStockError struct {
	WineID    uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("酒款 %d 库存不足: 需要 %d, 可用 %d", e.WineID, e.Requested, e.Available)
}

// Unwrap 映射为库存不足错误
func (e *InsufficientStockError) Unwrap() error {
	return apperrors.New(apperrors.ErrCodeInsufficientStock, e.Error())
}

// ConflictError 操作与现有数据冲突
type ConflictError struct {
	Entity string
	ID     uint
	Reason string
}

// 冲突原因
const (
	ReasonHasMovements = "has stock movements"
	ReasonRetired      = "wine is retired"
	ReasonDuplicate    = "duplicate code"
	ReasonStockLimit   = "stock limit exceeded"
)

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d 操作冲突: %s", e.Entity, e.ID, e.Reason)
}

// Unwrap 映射为冲突错误
func (e *ConflictError) Unwrap() error {
	switch e.Reason {
	case ReasonRetired:
		return apperrors.New(apperrors.ErrCodeWineRetired, e.Error())
	case ReasonDuplicate:
		return apperrors.New(apperrors.ErrCodeDuplicateEntry, e.Error())
	case ReasonStockLimit:
		return apperrors.New(apperrors.ErrCodeStockLimit, e.Error())
	}
	return apperrors.New(apperrors.ErrCodeConflict, e.Error())
}

// StorageError 存储层故障
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

// Unwrap 映射为数据库错误，保留底层原因
func (e *StorageError) Unwrap() error {
	return apperrors.WithCode(apperrors.ErrCodeDatabaseError, e.Err, "数据库操作失败")
}

// NewStorageError 包装底层错误，已是领域错误时原样返回
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsDomainError 是否为本包定义的错误
func IsDomainError(err error) bool {
	var (
		ve  *ValidationError
		ves ValidationErrors
		nf  *NotFoundError
		ins *InsufficientStockError
		ce  *ConflictError
		se  *StorageError
	)
	return errors.As(err, &ve) || errors.As(err, &ves) || errors.As(err, &nf) ||
		errors.As(err, &ins) || errors.As(err, &ce) || errors.As(err, &se)
}

// 实体名称
const (
	EntityWine     = "wine"
	EntityMovement = "movement"
	EntityShop     = "shop"
)

// ErrWineNotFound 构造酒款不存在错误
func ErrWineNotFound(id uint) error {
	return &NotFoundError{Entity: EntityWine, ID: id}
}
