package importer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/store"
)

// FileDuplicate 文件内容已入库过
const FileDuplicate FileStatus = "duplicate"

// StoreReport 入库导入结果
type StoreReport struct {
	Batch *BatchResult      `json:"batch"`
	Stats store.UpsertStats `json:"stats"`
}

// ImportToStore 逐个文件导入并写入 SQLite：按文件 SHA-1 去重（只有状态为 imported 的记录算重复），
// 每个文件一条上传记录和每个 sheet 一条元信息；单个文件写库失败只记录，不中断批次。
// 重复文件不写库，但其行仍出现在 Batch.Rows 里，Stats 只统计实际写入
func (c *Coordinator) ImportToStore(st *store.Store, paths []string) *StoreReport {
	startTime := time.Now()
	report := &StoreReport{Batch: &BatchResult{
		Columns: append([]string(nil), model.TidyColumns...),
		Rows:    []model.TidyRow{},
		Files:   make([]FileResult, 0, len(paths)),
	}}

	for _, path := range paths {
		fr, rows := c.persistFile(st, path, &report.Stats)
		report.Batch.Files = append(report.Batch.Files, fr)
		report.Batch.Rows = append(report.Batch.Rows, rows...)
	}

	report.Batch.Duration = time.Since(startTime)
	c.logger.Info("入库导入完成", "files", len(paths), "written", report.Stats.Written, "skipped_rows", report.Stats.Skipped)
	return report
}

func (c *Coordinator) persistFile(st *store.Store, path string, stats *store.UpsertStats) (FileResult, []model.TidyRow) {
	hash, err := store.FileSHA1(path)
	if err != nil {
		return FileResult{Path: path, Name: filepath.Base(path), Status: FileError, Error: err.Error()}, nil
	}

	existing, err := st.FindUploadByHash(hash)
	if err != nil {
		return FileResult{Path: path, Name: filepath.Base(path), Status: FileError, Error: err.Error()}, nil
	}
	if existing != nil && existing.Status == store.UploadImported {
		// 已成功入库：不重复写库，但仍解析出行，让批次输出保持完整
		c.logger.Info("文件已导入过，跳过写库", "file", filepath.Base(path), "sha1", hash, "upload_id", existing.ID)
		fr, rows := c.ingestFile(path)
		if fr.Status != FileError {
			fr.Status = FileDuplicate
		}
		return fr, rows
	}

	var uploadID int64
	if existing != nil {
		// skipped/error 等未成功的记录：复用并重新导入（比如期间保存了映射配置）
		uploadID = existing.ID
		if err := st.ReopenUpload(uploadID, filepath.Base(path), ""); err != nil {
			return FileResult{Path: path, Name: filepath.Base(path), Status: FileError, Error: err.Error()}, nil
		}
		c.logger.Info("重新导入未成功的文件", "file", filepath.Base(path), "previous_status", existing.Status, "upload_id", uploadID)
	} else {
		uploadID, err = st.RecordUpload(filepath.Base(path), hash, "")
		if err != nil {
			return FileResult{Path: path, Name: filepath.Base(path), Status: FileError, Error: err.Error()}, nil
		}
	}

	fr, rows := c.ingestFile(path)
	totalSheets := 0
	if fr.Report != nil {
		totalSheets = fr.Report.TotalSheets
		for _, res := range fr.Report.Sheets {
			if err := st.InsertSheetMeta(store.SheetMetaFromResult(&uploadID, fr.Name, res)); err != nil {
				c.logger.Warn("写入 sheet 元信息失败", "file", fr.Name, "sheet", res.SheetName, "error", err)
			}
		}
	}

	if len(rows) > 0 {
		s, err := st.UpsertTidyRows(rows)
		if err != nil {
			fr.Status = FileError
			fr.Error = fmt.Sprintf("写入数据失败: %v", err)
			rows = nil
		} else {
			stats.Written += s.Written
			stats.Skipped += s.Skipped
		}
	}

	if err := st.FinishUpload(uploadID, string(fr.Status), totalSheets, len(rows), fr.Error); err != nil {
		c.logger.Warn("更新上传记录失败", "file", fr.Name, "error", err)
	}
	return fr, rows
}
