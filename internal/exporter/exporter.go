package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// TidySheetName XLSX 导出的工作表名
const TidySheetName = "tidy"

// record 按 model.TidyColumns 顺序展开一行；空值为空串
func record(row model.TidyRow) []string {
	return []string{
		row.Chain,
		formatFloat(row.Units),
		formatFloat(row.Dollars),
		formatFloat(row.Stores),
		row.Brand,
		formatString(row.ReportDate),
		formatString(row.ReportMonth),
		string(row.Period),
		row.SourceFile,
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// WriteCSV 写出规范化 CSV（表头固定，即使没有数据行）
func WriteCSV(w io.Writer, rows []model.TidyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.TidyColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(record(row)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile 写出 CSV 文件（自动创建目录）
func WriteCSVFile(path string, rows []model.TidyRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// BuildXLSX 生成单工作表的规范化工作簿；数值列写为数字，空值留空
func BuildXLSX(rows []model.TidyRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TidySheetName); err != nil {
		_ = f.Close()
		return nil, err
	}

	header := make([]interface{}, len(model.TidyColumns))
	for i, h := range model.TidyColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(TidySheetName, "A1", &header); err != nil {
		_ = f.Close()
		return nil, err
	}

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetRowStyle(TidySheetName, 1, 1, headerStyle)

	for i, row := range rows {
		values := []interface{}{
			row.Chain,
			floatCell(row.Units),
			floatCell(row.Dollars),
			floatCell(row.Stores),
			row.Brand,
			formatString(row.ReportDate),
			formatString(row.ReportMonth),
			string(row.Period),
			row.SourceFile,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(TidySheetName, cell, &values); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	// 设置列宽
	_ = f.SetColWidth(TidySheetName, "A", "A", 30)
	_ = f.SetColWidth(TidySheetName, "B", "H", 14)
	_ = f.SetColWidth(TidySheetName, "I", "I", 40)
	return f, nil
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// WriteXLSX 写出 XLSX 文件
func WriteXLSX(path string, rows []model.TidyRow) error {
	f, err := BuildXLSX(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
