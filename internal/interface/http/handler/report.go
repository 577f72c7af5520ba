package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/winestock/internal/application/report"
	"github.com/xiebiao/winestock/internal/interface/http/dto"
	"github.com/xiebiao/winestock/pkg/response"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHandler 报表导出
type ReportHandler struct {
	reports *report.Service
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Movements 流水报表
// @Summary      流水报表
// @Description  kind为空时包含进货和销售；format为csv/xlsx时以附件下载
// @Tags         报表
// @Produce      json
// @Produce      text/csv
// @Param        kind query string false "purchase | sale"
// @Param        name query string false "酒款名称包含"
// @Param        code query string false "酒款编码包含"
// @Param        from query string false "起始日期 YYYY-MM-DD(含)"
// @Param        to query string false "结束日期 YYYY-MM-DD(含)"
// @Param        format query string false "json | csv | xlsx"
// @Success      200 {object} response.Response{data=report.MovementReport}
// @Router       /api/v1/reports/movements [get]
func (h *ReportHandler) Movements(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	filter, err := req.Filter()
	if err != nil {
		fail(c, err)
		return
	}

	r, err := h.reports.MovementReport(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	h.render(c, req.Format, r, r)
}

// Stock 库存汇总
// @Summary      库存汇总
// @Description  在售酒款的库存、提醒状态和库存金额
// @Tags         报表
// @Produce      json
// @Param        format query string false "json | csv | xlsx"
// @Success      200 {object} response.Response{data=report.StockSummary}
// @Router       /api/v1/reports/stock [get]
func (h *ReportHandler) Stock(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	s, err := h.reports.StockSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	h.render(c, req.Format, s, s)
}

// render 按格式输出，文件先写入内存，生成失败时仍能返回统一错误响应
func (h *ReportHandler) render(c *gin.Context, format string, data interface{}, table report.Table) {
	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch format {
	case "csv":
		err = report.WriteCSV(&buf, table)
		contentType = contentTypeCSV
	case "xlsx":
		err = report.WriteXLSX(&buf, table)
		contentType = contentTypeXLSX
	default:
		response.Success(c, data)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("%s.%s", strings.ToLower(table.Title()), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
