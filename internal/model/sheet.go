package model

// RawGrid 单个 sheet 的原始二维单元格文本（不含表头推断，行可不等长）
type RawGrid [][]string

// Rows 行数
func (g RawGrid) Rows() int {
	return len(g)
}

// Cols 列数（取最宽的一行）
func (g RawGrid) Cols() int {
	n := 0
	for _, row := range g {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Cell 读取单元格，越界返回空串
func (g RawGrid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// HeaderBlock 表头所在的行区间 [Start, End]，End+1 为首个数据行
type HeaderBlock struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DataStart 首个数据行
func (b HeaderBlock) DataStart() int {
	return b.End + 1
}

// SheetInfo 工作表概要
type SheetInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
	ColCount int    `json:"colCount"`
}
