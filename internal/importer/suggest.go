package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/excel"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/parser"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/profile"
)

// PreviewRows 映射预览的行数
const PreviewRows = 10

// ErrInvalidHeaderRows 手动指定的表头/数据起始行不合法
var ErrInvalidHeaderRows = errors.New("invalid header rows")

// SuggestRequest 映射建议请求
type SuggestRequest struct {
	Path      string
	Sheet     string             // 为空时取第一个候选 sheet
	Block     *model.HeaderBlock // 为空时按锚点自动定位
	DataStart int                // 0 表示紧接表头
}

// SuggestResult 映射建议（供人工确认）
type SuggestResult struct {
	FileName    string              `json:"fileName"`
	Sheet       string              `json:"sheet"`
	Sheets      []string            `json:"sheets"`
	HeaderBlock model.HeaderBlock   `json:"headerBlock"`
	DataStart   int                 `json:"dataStart"`
	Headers     []string            `json:"headers"`
	Suggestion  model.ColumnMapping `json:"suggestion"`
	ProfileKey  string              `json:"profileKey"`
	Saved       model.ColumnMapping `json:"saved,omitempty"`
	Period      model.Period        `json:"period"`
	ReportDate  *string             `json:"reportDate"`
	ReportMonth *string             `json:"reportMonth"`
	Preview     []map[string]string `json:"preview"`
}

// Suggest 建议模式：六个字段各自匹配，附带已保存的映射与数据预览，不写任何状态
func (c *Coordinator) Suggest(req SuggestRequest) (*SuggestResult, error) {
	fileName := filepath.Base(req.Path)

	wb, err := c.open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileName, err)
	}
	defer wb.Close()

	sheets := wb.SheetNames()
	sheet := req.Sheet
	if sheet == "" {
		candidates := c.recognizer.CandidateSheets(sheets)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%s: %w", fileName, excel.ErrSheetNotFound)
		}
		sheet = candidates[0]
	}

	grid, err := wb.Grid(sheet)
	if err != nil {
		return nil, err
	}

	var block model.HeaderBlock
	if req.Block != nil {
		block = *req.Block
		if block.Start < 0 || block.End < block.Start || block.End >= grid.Rows() {
			return nil, fmt.Errorf("%w: header rows %d-%d outside sheet of %d rows", ErrInvalidHeaderRows, block.Start, block.End, grid.Rows())
		}
	} else {
		block, err = parser.LocateHeaderBlock(grid, c.opts.MaxScan, c.opts.Anchor)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", fileName, sheet, err)
		}
	}

	dataStart := block.DataStart()
	if req.DataStart != 0 {
		if req.DataStart <= block.End {
			return nil, fmt.Errorf("%w: data start %d must be after header end %d", ErrInvalidHeaderRows, req.DataStart, block.End)
		}
		dataStart = req.DataStart
	}

	headers := parser.ColumnNames(parser.UsableColumns(parser.SynthesizeHeaders(grid, block)))
	res := &SuggestResult{
		FileName:    fileName,
		Sheet:       sheet,
		Sheets:      sheets,
		HeaderBlock: block,
		DataStart:   dataStart,
		Headers:     headers,
		Suggestion:  c.mapper.Suggest(headers),
		ProfileKey:  profile.NewKey(fileName, sheet, headers),
		Period:      parser.InferPeriod(grid, block, c.opts.Lookback()),
	}
	res.ReportDate, res.ReportMonth = parser.ParseReportDate(fileName)

	if c.profiles != nil {
		if saved, ok := c.profiles.Get(res.ProfileKey); ok {
			res.Saved = saved
		}
	}

	res.Preview = previewRows(grid, block, dataStart, res.Suggestion)
	return res, nil
}

// previewRows 按建议映射取数据区前 PreviewRows 行（字段 → 原始单元格文本）
func previewRows(grid model.RawGrid, block model.HeaderBlock, dataStart int, mapping model.ColumnMapping) []map[string]string {
	cols := parser.UsableColumns(parser.SynthesizeHeaders(grid, block))
	out := []map[string]string{}
	for r := dataStart; r < grid.Rows() && len(out) < PreviewRows; r++ {
		row := make(map[string]string, len(model.AllRoles))
		for _, role := range model.AllRoles {
			idx, ok := parser.ColumnIndex(cols, mapping.Get(role))
			if !ok {
				continue
			}
			row[string(role)] = strings.TrimSpace(grid.Cell(r, idx))
		}
		out = append(out, row)
	}
	return out
}
