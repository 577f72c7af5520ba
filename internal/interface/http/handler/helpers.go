package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/winestock/internal/domain/inventory"
	apperrors "github.com/xiebiao/winestock/pkg/errors"
	"github.com/xiebiao/winestock/pkg/response"
)

// parseID 解析路径参数中的ID
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的ID: "+c.Param("id"))
		return 0, false
	}
	return uint(id), true
}

// bindError 请求体或查询参数格式错误
func bindError(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
}

// fail 渲染业务错误，校验错误附带逐字段的错误列表
func fail(c *gin.Context, err error) {
	var errs inventory.ValidationErrors
	if errors.As(err, &errs) {
		response.ErrorWithData(c, err, errs)
		return
	}
	response.Error(c, err)
}
