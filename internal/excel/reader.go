package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

var (
	// ErrFileUnreadable 文件无法打开或解析
	ErrFileUnreadable = errors.New("file unreadable")
	// ErrUnsupportedFormat 不支持的工作簿格式
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	// ErrSheetNotFound 工作表不存在
	ErrSheetNotFound = errors.New("sheet not found")
)

// SupportedExtensions 目录扫描时识别的扩展名
var SupportedExtensions = []string{".xlsb", ".xlsx", ".xlsm", ".xls", ".csv"}

// Workbook 只读工作簿
type Workbook interface {
	SheetNames() []string
	Grid(sheet string) (model.RawGrid, error)
	Close() error
}

// IsSupported 是否为可识别的工作簿文件
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Open 按扩展名打开工作簿
func Open(path string) (Workbook, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm":
		return openXLSX(path)
	case ".xlsb":
		return openXLSB(path)
	case ".xls":
		return openXLS(path)
	case ".csv":
		return openCSV(path)
	default:
		return nil, fmt.Errorf("%w: %w %q", ErrFileUnreadable, ErrUnsupportedFormat, ext)
	}
}

// Sheets 工作表概要列表；读取失败的工作表跳过
func Sheets(wb Workbook) []model.SheetInfo {
	names := wb.SheetNames()
	out := make([]model.SheetInfo, 0, len(names))
	for _, name := range names {
		grid, err := wb.Grid(name)
		if err != nil {
			continue
		}
		out = append(out, model.SheetInfo{
			Name:     name,
			RowCount: grid.Rows(),
			ColCount: grid.Cols(),
		})
	}
	return out
}

// xlsxWorkbook excelize 实现
type xlsxWorkbook struct {
	file *excelize.File
}

func openXLSX(path string) (*xlsxWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open excel: %v", ErrFileUnreadable, err)
	}
	return &xlsxWorkbook{file: f}, nil
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Grid 读取原始单元格值（不套用数字格式，避免 "$1,234" 之类的显示文本）
func (w *xlsxWorkbook) Grid(sheet string) (model.RawGrid, error) {
	if idx, _ := w.file.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return model.RawGrid(rows), nil
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

// xlsWorkbook BIFF(.xls) 实现，打开时一次性读入全部工作表
type xlsWorkbook struct {
	names []string
	grids map[string]model.RawGrid
}

func openXLS(path string) (wb *xlsWorkbook, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	defer f.Close()

	// 损坏的 BIFF 文件会让解码器 panic
	defer func() {
		if r := recover(); r != nil {
			wb = nil
			err = fmt.Errorf("%w: decode xls: %v", ErrFileUnreadable, r)
		}
	}()

	book, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open xls: %v", ErrFileUnreadable, err)
	}

	wb = &xlsWorkbook{grids: make(map[string]model.RawGrid)}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		grid := make(model.RawGrid, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				grid = append(grid, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := range cells {
				cells[c] = row.Col(c)
			}
			grid = append(grid, cells)
		}
		wb.names = append(wb.names, sheet.Name)
		wb.grids[sheet.Name] = grid
	}
	return wb, nil
}

func (w *xlsWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

func (w *xlsWorkbook) Grid(sheet string) (model.RawGrid, error) {
	grid, ok := w.grids[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	return grid, nil
}

func (w *xlsWorkbook) Close() error {
	return nil
}

// csvWorkbook 单个工作表，表名取文件名（不含扩展名）
type csvWorkbook struct {
	name string
	grid model.RawGrid
}

func openCSV(path string) (*csvWorkbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	defer f.Close()

	grid, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	base := filepath.Base(path)
	return &csvWorkbook{
		name: strings.TrimSuffix(base, filepath.Ext(base)),
		grid: grid,
	}, nil
}

func readCSV(r io.Reader) (model.RawGrid, error) {
	// Excel 导出的 CSV 常带 UTF-8 BOM
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return model.RawGrid(records), nil
}

func (w *csvWorkbook) SheetNames() []string {
	return []string{w.name}
}

func (w *csvWorkbook) Grid(sheet string) (model.RawGrid, error) {
	if sheet != w.name {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	return w.grid, nil
}

func (w *csvWorkbook) Close() error {
	return nil
}
