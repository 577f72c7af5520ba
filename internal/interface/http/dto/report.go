package dto

// ReportRequest 报表查询
// format 为 json 时走统一响应，csv/xlsx 以附件下载
// 流水报表支持与流水列表相同的过滤条件，库存汇总忽略这些条件
type ReportRequest struct {
	MovementQuery
	Format string `form:"format" binding:"omitempty,oneof=json csv xlsx" example:"json"`
}
