package parser

import (
	"errors"
	"strings"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

const (
	// DefaultAnchor 表头锚点（数据透视表的 "Row Labels"）
	DefaultAnchor = "row labels"
	// DefaultMaxScan 锚点最多扫描的行数
	DefaultMaxScan = 200
	// HeaderLookback 锚点行之上并入表头的行数
	HeaderLookback = 3
	// HeaderSeparator 多行表头拼接分隔符
	HeaderSeparator = " | "
)

// ErrHeaderNotFound 扫描范围内没有锚点行
var ErrHeaderNotFound = errors.New("header anchor not found")

// FindHeaderRow 在前 maxScan 行内查找第一个包含锚点文本的行
func FindHeaderRow(grid model.RawGrid, maxScan int, anchor string) (int, bool) {
	if anchor == "" {
		anchor = DefaultAnchor
	}
	anchor = strings.ToLower(anchor)

	upto := len(grid)
	if maxScan > 0 && maxScan < upto {
		upto = maxScan
	}

	for i := 0; i < upto; i++ {
		for _, cell := range grid[i] {
			if strings.Contains(NormalizeColumnName(cell), anchor) {
				return i, true
			}
		}
	}
	return -1, false
}

// LocateHeaderBlock 定位表头区块：锚点行及其上方最多 3 行
func LocateHeaderBlock(grid model.RawGrid, maxScan int, anchor string) (model.HeaderBlock, error) {
	end, ok := FindHeaderRow(grid, maxScan, anchor)
	if !ok {
		return model.HeaderBlock{}, ErrHeaderNotFound
	}
	start := end - HeaderLookback
	if start < 0 {
		start = 0
	}
	return model.HeaderBlock{Start: start, End: end}, nil
}

// SynthesizeHeaders 将表头区块逐列自上而下拼接为规范列名，长度等于 grid 列数
func SynthesizeHeaders(grid model.RawGrid, block model.HeaderBlock) []string {
	cols := grid.Cols()
	headers := make([]string, cols)

	for c := 0; c < cols; c++ {
		tokens := make([]string, 0, block.End-block.Start+1)
		for r := block.Start; r <= block.End; r++ {
			if v := NormalizeCell(grid.Cell(r, c)); v != "" {
				tokens = append(tokens, v)
			}
		}
		headers[c] = strings.Join(tokens, HeaderSeparator)
	}
	return headers
}

// Column 可用列（规范列名 + 原始列索引）
type Column struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// UsableColumns 去掉空列名后的可用列，保持原列顺序
func UsableColumns(headers []string) []Column {
	out := make([]Column, 0, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		out = append(out, Column{Index: i, Name: h})
	}
	return out
}

// ColumnNames 可用列的列名
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex 按列名查找第一个匹配列的索引
func ColumnIndex(cols []Column, name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for _, c := range cols {
		if c.Name == name {
			return c.Index, true
		}
	}
	return -1, false
}
