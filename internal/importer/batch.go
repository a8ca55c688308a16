package importer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/excel"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/parser"
)

// FileStatus 文件处理状态
type FileStatus string

const (
	FileImported FileStatus = "imported"
	FileSkipped  FileStatus = "skipped"
	FileError    FileStatus = "error"
)

// FileResult 单个文件的批次结果
type FileResult struct {
	Path   string               `json:"path"`
	Name   string               `json:"name"`
	Status FileStatus           `json:"status"`
	Rows   int                  `json:"rows"`
	Error  string               `json:"error,omitempty"`
	Report *parser.ImportReport `json:"report,omitempty"`
}

// BatchResult 多文件导入结果。Columns 始终是完整的规范列集合，即使没有任何行
type BatchResult struct {
	Columns  []string        `json:"columns"`
	Rows     []model.TidyRow `json:"rows"`
	Files    []FileResult    `json:"files"`
	Duration time.Duration   `json:"duration"`
}

// Imported 成功导入的文件数
func (b *BatchResult) Imported() int {
	n := 0
	for _, f := range b.Files {
		if f.Status == FileImported {
			n++
		}
	}
	return n
}

// IngestAll 逐个文件导入并拼接结果；任何单个文件的失败只记录，不中断批次
func (c *Coordinator) IngestAll(paths []string) *BatchResult {
	startTime := time.Now()
	batch := &BatchResult{
		Columns: append([]string(nil), model.TidyColumns...),
		Rows:    []model.TidyRow{},
		Files:   make([]FileResult, 0, len(paths)),
	}

	for _, path := range paths {
		fr, rows := c.ingestFile(path)
		batch.Files = append(batch.Files, fr)
		batch.Rows = append(batch.Rows, rows...)
	}

	batch.Duration = time.Since(startTime)
	c.logger.Info("批量导入完成", "files", len(paths), "imported", batch.Imported(), "rows", len(batch.Rows), "duration", batch.Duration)
	return batch
}

// ingestFile 导入单个文件并归类为 imported/skipped/error
func (c *Coordinator) ingestFile(path string) (FileResult, []model.TidyRow) {
	fr := FileResult{Path: path, Name: filepath.Base(path)}

	res, err := c.safeIngest(path)
	switch {
	case err != nil:
		fr.Status = FileError
		fr.Error = err.Error()
		c.logger.Error("读取工作簿失败", "file", fr.Name, "error", err)
		return fr, nil
	case len(res.Rows) == 0:
		fr.Status = FileSkipped
		fr.Report = res.Report
		c.logger.Warn("跳过工作簿：没有可用的数据表", "file", fr.Name)
		return fr, nil
	default:
		fr.Status = FileImported
		fr.Rows = len(res.Rows)
		fr.Report = res.Report
		return fr, res.Rows
	}
}

// DiscoverFiles 列出目录下可识别的工作簿（不递归，跳过 Excel 锁文件 "~$"），按文件名排序
func DiscoverFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if excel.IsSupported(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
