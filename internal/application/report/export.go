package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02 15:04:05"

// Table 可以导出为CSV/XLSX的报表
type Table interface {
	Title() string
	Headings() []string
	CellRows() [][]interface{}
	Totals() []interface{}
}

// Title 报表标题
func (r *MovementReport) Title() string {
	switch r.Kind {
	case "purchase":
		return "Purchases"
	case "sale":
		return "Sales"
	default:
		return "Movements"
	}
}

// Headings 表头
func (r *MovementReport) Headings() []string {
	return []string{"Date", "Code", "Wine", "Kind", "Quantity", "Unit Price", "Subtotal", "Note"}
}

// CellRows 数据行
func (r *MovementReport) CellRows() [][]interface{} {
	rows := make([][]interface{}, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = []interface{}{
			row.Date, row.WineCode, row.WineName, string(row.Kind),
			row.Quantity, row.UnitPrice, row.Subtotal, row.Note,
		}
	}
	return rows
}

// Totals 合计行
func (r *MovementReport) Totals() []interface{} {
	return []interface{}{"Total", "", "", "", r.TotalQuantity, "", r.TotalAmount, ""}
}

// Title 报表标题
func (s *StockSummary) Title() string {
	return "Stock"
}

// Headings 表头
func (s *StockSummary) Headings() []string {
	return []string{"Code", "Wine", "Vintage", "Balance", "Threshold", "Status", "Unit Price", "Stock Value"}
}

// CellRows 数据行
func (s *StockSummary) CellRows() [][]interface{} {
	rows := make([][]interface{}, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = []interface{}{
			row.Code, row.Name, row.Vintage, row.Balance,
			row.Threshold, row.Status.String(), row.UnitPrice, row.StockValue,
		}
	}
	return rows
}

// Totals 合计行
func (s *StockSummary) Totals() []interface{} {
	return []interface{}{"Total", "", "", s.TotalBottles, "", "", "", s.TotalValue}
}

// WriteCSV 导出CSV，最后一行为合计
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headings()); err != nil {
		return err
	}
	for _, row := range t.CellRows() {
		if err := cw.Write(formatRow(row)); err != nil {
			return err
		}
	}
	if err := cw.Write(formatRow(t.Totals())); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX 导出Excel
// 第1行为表头，金额写为数值单元格，最后一行为合计
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Title()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	headings := t.Headings()
	for i, h := range headings {
		if err := setCell(f, sheet, i+1, 1, h); err != nil {
			return err
		}
	}

	rowNo := 2
	for _, row := range t.CellRows() {
		for i, v := range row {
			if err := setCell(f, sheet, i+1, rowNo, v); err != nil {
				return err
			}
		}
		rowNo++
	}
	for i, v := range t.Totals() {
		if err := setCell(f, sheet, i+1, rowNo, v); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headings), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}
	lastTotal, err := excelize.CoordinatesToCellName(len(headings), rowNo)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNo), lastTotal, bold); err != nil {
		return err
	}

	return f.Write(w)
}

func setCell(f *excelize.File, sheet string, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case decimal.Decimal:
		return f.SetCellValue(sheet, cell, val.InexactFloat64())
	case time.Time:
		return f.SetCellValue(sheet, cell, val.Format(dateLayout))
	default:
		return f.SetCellValue(sheet, cell, val)
	}
}

func formatRow(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case decimal.Decimal:
			out[i] = val.StringFixed(2)
		case time.Time:
			out[i] = val.Format(dateLayout)
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}
