package parser

import (
	"time"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// SheetStatus Sheet 处理状态
type SheetStatus string

const (
	SheetStatusImported SheetStatus = "imported"
	SheetStatusSkipped  SheetStatus = "skipped"
	SheetStatusError    SheetStatus = "error"
	SheetStatusNotTried SheetStatus = "not_tried" // 已有可用 sheet，后续候选不再处理
)

// SkipReason 跳过原因
type SkipReason string

const (
	SkipHeaderNotFound        SkipReason = "header_not_found"
	SkipRequiredColumnMissing SkipReason = "required_column_missing"
	SkipNoDataRows            SkipReason = "no_data_rows"
	SkipReadFailed            SkipReason = "read_failed"
)

// MappingSource 列映射来源
type MappingSource string

const (
	MappingFromProfile MappingSource = "profile"
	MappingFromRules   MappingSource = "rules"
)

// ParseResult 单个 Sheet 的解析结果
type ParseResult struct {
	SheetName     string              `json:"sheetName"`
	Status        SheetStatus         `json:"status"`
	Reason        SkipReason          `json:"reason,omitempty"`
	HeaderBlock   *model.HeaderBlock  `json:"headerBlock,omitempty"`
	Headers       []string            `json:"headers,omitempty"`
	Mapping       model.ColumnMapping `json:"mapping,omitempty"`
	MappingSource MappingSource       `json:"mappingSource,omitempty"`
	ProfileKey    string              `json:"profileKey,omitempty"`
	Period        model.Period        `json:"period,omitempty"`
	ImportedRows  int                 `json:"importedRows"`
	DroppedRows   int                 `json:"droppedRows"`
	Errors        []string            `json:"errors,omitempty"`
	Duration      time.Duration       `json:"duration"`
}

// ImportReport 单个工作簿的导入报告
type ImportReport struct {
	Filename        string        `json:"filename"`
	TotalSheets     int           `json:"totalSheets"`
	CandidateSheets []string      `json:"candidateSheets"`
	ImportedSheet   string        `json:"importedSheet,omitempty"`
	SkippedSheets   int           `json:"skippedSheets"`
	ImportedRows    int           `json:"importedRows"`
	Duration        time.Duration `json:"duration"`
	Sheets          []ParseResult `json:"sheets"`
}
