package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/excel"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/logger"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/parser"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/profile"
)

// DefaultBrand 写入每一行的品牌常量
const DefaultBrand = "NEOLEA"

var (
	// ErrFileUnreadable 工作簿无法打开
	ErrFileUnreadable = excel.ErrFileUnreadable
	// ErrUnsupportedFormat 工作簿格式不支持
	ErrUnsupportedFormat = excel.ErrUnsupportedFormat
)

// Options 导入选项
type Options struct {
	Brand           string
	Anchor          string
	MaxScan         int
	PeriodLookback  *int // nil 取默认值；0 表示只看表头区块本身
	PreferredSheets []string
	Rules           []parser.RoleRule
}

// WithDefaults 补齐未设置的选项
func (o Options) WithDefaults() Options {
	if o.Brand == "" {
		o.Brand = DefaultBrand
	}
	if o.Anchor == "" {
		o.Anchor = parser.DefaultAnchor
	}
	if o.MaxScan <= 0 {
		o.MaxScan = parser.DefaultMaxScan
	}
	if o.PeriodLookback == nil {
		o.PeriodLookback = IntPtr(parser.DefaultPeriodLookback)
	}
	return o
}

// Lookback 生效的报告期回看行数
func (o Options) Lookback() int {
	if o.PeriodLookback == nil {
		return parser.DefaultPeriodLookback
	}
	return *o.PeriodLookback
}

// IntPtr 返回 v 的指针
func IntPtr(v int) *int {
	return &v
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/sheet_start/sheet_done/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// Coordinator 导入协调器：工作簿 → 候选 sheet → 表头 → 映射 → 规范化行
type Coordinator struct {
	opts       Options
	recognizer *parser.SheetRecognizer
	mapper     *parser.SchemaMapper
	profiles   profile.Repository
	logger     *logger.Logger
	progress   func(ProgressEvent)
	open       func(path string) (excel.Workbook, error)
}

// NewCoordinator 创建导入协调器；profiles 可为 nil（只走规则映射）
func NewCoordinator(opts Options, profiles profile.Repository, log *logger.Logger) *Coordinator {
	opts = opts.WithDefaults()
	return &Coordinator{
		opts:       opts,
		recognizer: parser.NewSheetRecognizer(opts.PreferredSheets),
		mapper:     parser.NewSchemaMapper(opts.Rules),
		profiles:   profiles,
		logger:     logger.OrNop(log),
		open:       excel.Open,
	}
}

// OnProgress 注册进度回调（同步调用）
func (c *Coordinator) OnProgress(fn func(ProgressEvent)) {
	c.progress = fn
}

// Mapper 当前使用的列映射器
func (c *Coordinator) Mapper() *parser.SchemaMapper {
	return c.mapper
}

// Options 生效的导入选项
func (c *Coordinator) Options() Options {
	return c.opts
}

// WorkbookResult 单个工作簿的导入结果。Columns 始终是完整的规范列集合
type WorkbookResult struct {
	Report  *parser.ImportReport `json:"report"`
	Columns []string             `json:"columns"`
	Rows    []model.TidyRow      `json:"rows"`
}

// IngestWorkbook 导入单个工作簿，取第一个产出数据行的候选 sheet。
// 无可用 sheet 时返回空 Rows（不是错误），只有文件无法打开时返回错误。
func (c *Coordinator) IngestWorkbook(path string) (*WorkbookResult, error) {
	startTime := time.Now()
	fileName := filepath.Base(path)
	log := c.logger.With("file", fileName)

	c.emit("start", "开始导入工作簿", map[string]string{"filename": fileName})

	wb, err := c.open(path)
	if err != nil {
		c.emit("error", fmt.Sprintf("打开文件失败: %v", err), nil)
		return nil, fmt.Errorf("open %s: %w", fileName, err)
	}
	defer wb.Close()

	sheetNames := wb.SheetNames()
	candidates := c.recognizer.CandidateSheets(sheetNames)
	report := &parser.ImportReport{
		Filename:        fileName,
		TotalSheets:     len(sheetNames),
		CandidateSheets: candidates,
		Sheets:          []parser.ParseResult{},
	}
	result := &WorkbookResult{
		Report:  report,
		Columns: append([]string(nil), model.TidyColumns...),
		Rows:    []model.TidyRow{},
	}

	reportDate, reportMonth := parser.ParseReportDate(fileName)

	for _, sheet := range candidates {
		if report.ImportedSheet != "" {
			recordSheetResult(report, parser.ParseResult{SheetName: sheet, Status: parser.SheetStatusNotTried})
			continue
		}

		c.emit("sheet_start", fmt.Sprintf("正在解析 Sheet: %s", sheet), map[string]string{"sheet_name": sheet})
		res, rows := c.processSheet(wb, path, sheet)
		for i := range rows {
			rows[i].ReportDate = reportDate
			rows[i].ReportMonth = reportMonth
			rows[i].SourceFile = fileName
		}
		recordSheetResult(report, res)

		if res.Status == parser.SheetStatusImported {
			report.ImportedSheet = sheet
			result.Rows = append(result.Rows, rows...)
			log.Info("工作表导入成功", "sheet", sheet, "rows", len(rows), "period", res.Period, "mapping_source", res.MappingSource)
			c.emit("sheet_done", fmt.Sprintf("Sheet \"%s\" 导入成功: %d 行", sheet, len(rows)), map[string]interface{}{
				"sheet_name":    sheet,
				"imported_rows": len(rows),
			})
			continue
		}
		log.Warn("跳过工作表", "sheet", sheet, "status", res.Status, "reason", res.Reason, "errors", res.Errors)
	}

	if report.ImportedSheet == "" {
		log.Warn("未找到可用的数据表", "candidates", candidates)
	}

	report.Duration = time.Since(startTime)
	c.emit("done", "导入完成", report)
	return result, nil
}

// processSheet 处理单个候选 sheet
func (c *Coordinator) processSheet(wb excel.Workbook, path, sheet string) (parser.ParseResult, []model.TidyRow) {
	sheetStartTime := time.Now()
	res := parser.ParseResult{SheetName: sheet}
	finish := func(status parser.SheetStatus, reason parser.SkipReason, errs ...string) parser.ParseResult {
		res.Status = status
		res.Reason = reason
		res.Errors = append(res.Errors, errs...)
		res.Duration = time.Since(sheetStartTime)
		return res
	}

	grid, err := wb.Grid(sheet)
	if err != nil {
		return finish(parser.SheetStatusError, parser.SkipReadFailed, fmt.Sprintf("读取 Sheet 失败: %v", err)), nil
	}

	block, err := parser.LocateHeaderBlock(grid, c.opts.MaxScan, c.opts.Anchor)
	if err != nil {
		return finish(parser.SheetStatusSkipped, parser.SkipHeaderNotFound, err.Error()), nil
	}
	res.HeaderBlock = &block

	headers := parser.SynthesizeHeaders(grid, block)
	cols := parser.UsableColumns(headers)
	names := parser.ColumnNames(cols)
	res.Headers = names
	res.ProfileKey = profile.NewKey(path, sheet, names)

	mapping, source, err := c.resolveMapping(res.ProfileKey, names)
	if err != nil {
		return finish(parser.SheetStatusSkipped, parser.SkipRequiredColumnMissing, err.Error()), nil
	}
	res.Mapping = mapping
	res.MappingSource = source
	res.Period = parser.InferPeriod(grid, block, c.opts.Lookback())

	rows, dropped := c.buildRows(grid, block, cols, mapping, res.Period)
	res.ImportedRows = len(rows)
	res.DroppedRows = dropped
	if len(rows) == 0 {
		return finish(parser.SheetStatusSkipped, parser.SkipNoDataRows), nil
	}
	return finish(parser.SheetStatusImported, ""), rows
}

// resolveMapping 已确认的 profile 优先；profile 失效（列不存在或缺必需字段）时回退到规则映射
func (c *Coordinator) resolveMapping(key string, headers []string) (model.ColumnMapping, parser.MappingSource, error) {
	if c.profiles != nil {
		if saved, ok := c.profiles.Get(key); ok {
			if saved.ValidFor(headers) && len(saved.Missing(model.RequiredRoles)) == 0 {
				return saved.Clone(), parser.MappingFromProfile, nil
			}
			c.logger.Warn("已保存的列映射与当前表头不符，改用规则映射", "profile_key", key)
		}
	}
	mapping, err := c.mapper.MapRequired(headers)
	if err != nil {
		return nil, "", err
	}
	return mapping, parser.MappingFromRules, nil
}

// buildRows 按映射抽取数据行：数值列无法解析时置空但保留行，chain 为空的行丢弃
func (c *Coordinator) buildRows(grid model.RawGrid, block model.HeaderBlock, cols []parser.Column, mapping model.ColumnMapping, period model.Period) ([]model.TidyRow, int) {
	chainIdx, _ := parser.ColumnIndex(cols, mapping.Get(model.RoleChain))
	unitsIdx, _ := parser.ColumnIndex(cols, mapping.Get(model.RoleUnits))
	dollarsIdx, _ := parser.ColumnIndex(cols, mapping.Get(model.RoleDollars))
	storesIdx, hasStores := parser.ColumnIndex(cols, mapping.Get(model.RoleStores))

	rows := make([]model.TidyRow, 0, grid.Rows()-block.DataStart())
	dropped := 0
	for r := block.DataStart(); r < grid.Rows(); r++ {
		chain := strings.TrimSpace(grid.Cell(r, chainIdx))
		if chain == "" {
			dropped++
			continue
		}
		row := model.TidyRow{
			Chain:   chain,
			Units:   parser.ParseNumber(grid.Cell(r, unitsIdx)),
			Dollars: parser.ParseNumber(grid.Cell(r, dollarsIdx)),
			Brand:   c.opts.Brand,
			Period:  period,
		}
		if hasStores {
			row.Stores = parser.ParseNumber(grid.Cell(r, storesIdx))
		}
		rows = append(rows, row)
	}
	return rows, dropped
}

// recordSheetResult 记录 Sheet 处理结果
func recordSheetResult(report *parser.ImportReport, result parser.ParseResult) {
	report.Sheets = append(report.Sheets, result)

	switch result.Status {
	case parser.SheetStatusImported:
		report.ImportedRows += result.ImportedRows
	case parser.SheetStatusSkipped, parser.SheetStatusError:
		report.SkippedSheets++
	}
}

func (c *Coordinator) emit(typ, message string, data interface{}) {
	if c.progress == nil {
		return
	}
	c.progress(ProgressEvent{Type: typ, Message: message, Data: data, Timestamp: time.Now()})
}

// safeIngest 单个文件内的 panic 在文件边界恢复，不影响批次内其他文件
func (c *Coordinator) safeIngest(path string) (res *WorkbookResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("导入工作簿时发生 panic", "file", filepath.Base(path), "panic", r, "stack", string(debug.Stack()))
			res = nil
			err = fmt.Errorf("ingest %s: panic: %v", filepath.Base(path), r)
		}
	}()
	return c.IngestWorkbook(path)
}

// IsUnreadable 错误是否表示文件无法读取
func IsUnreadable(err error) bool {
	return errors.Is(err, ErrFileUnreadable)
}
