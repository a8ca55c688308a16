package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/parser"
)

// SheetMeta Sheet 处理结果（追溯用）
type SheetMeta struct {
	ID                int64  `db:"id" json:"id"`
	UploadID          *int64 `db:"upload_id" json:"uploadId"`
	SourceFile        string `db:"source_file" json:"sourceFile"`
	SheetName         string `db:"sheet_name" json:"sheetName"`
	Status            string `db:"status" json:"status"`
	Reason            string `db:"reason" json:"reason"`
	HeaderStart       *int   `db:"header_start" json:"headerStart"`
	HeaderEnd         *int   `db:"header_end" json:"headerEnd"`
	ColumnsJSON       string `db:"columns_json" json:"columnsJson"`
	ColumnMappingJSON string `db:"column_mapping_json" json:"columnMappingJson"`
	MappingSource     string `db:"mapping_source" json:"mappingSource"`
	ProfileKey        string `db:"profile_key" json:"profileKey"`
	Period            string `db:"period" json:"period"`
	ImportedRows      int    `db:"imported_rows" json:"importedRows"`
	DroppedRows       int    `db:"dropped_rows" json:"droppedRows"`
	ErrorMessage      string `db:"error_message" json:"errorMessage"`
}

// SheetMetaFromResult 由解析结果构造元信息
func SheetMetaFromResult(uploadID *int64, sourceFile string, res parser.ParseResult) SheetMeta {
	meta := SheetMeta{
		UploadID:          uploadID,
		SourceFile:        sourceFile,
		SheetName:         res.SheetName,
		Status:            string(res.Status),
		Reason:            string(res.Reason),
		ColumnsJSON:       BuildColumnsJSON(res.Headers),
		ColumnMappingJSON: buildMappingJSON(res.Mapping),
		MappingSource:     string(res.MappingSource),
		ProfileKey:        res.ProfileKey,
		Period:            string(res.Period),
		ImportedRows:      res.ImportedRows,
		DroppedRows:       res.DroppedRows,
		ErrorMessage:      strings.Join(res.Errors, "; "),
	}
	if res.HeaderBlock != nil {
		start, end := res.HeaderBlock.Start, res.HeaderBlock.End
		meta.HeaderStart = &start
		meta.HeaderEnd = &end
	}
	return meta
}

// InsertSheetMeta 写入 Sheet 元信息（用于追溯与容错）
func (s *Store) InsertSheetMeta(meta SheetMeta) error {
	_, err := s.db.NamedExec(`
		INSERT INTO sheets_meta (
			upload_id, source_file, sheet_name,
			status, reason,
			header_start, header_end,
			columns_json, column_mapping_json, mapping_source, profile_key,
			period, imported_rows, dropped_rows,
			error_message
		) VALUES (
			:upload_id, :source_file, :sheet_name,
			:status, :reason,
			:header_start, :header_end,
			:columns_json, :column_mapping_json, :mapping_source, :profile_key,
			:period, :imported_rows, :dropped_rows,
			:error_message
		)
	`, meta)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// ListSheetMeta 按上传记录列出 Sheet 元信息
func (s *Store) ListSheetMeta(uploadID int64) ([]SheetMeta, error) {
	var out []SheetMeta
	err := s.db.Select(&out, `
		SELECT id, upload_id, source_file, sheet_name, status,
			COALESCE(reason, '') AS reason,
			header_start, header_end,
			COALESCE(columns_json, '') AS columns_json,
			COALESCE(column_mapping_json, '') AS column_mapping_json,
			COALESCE(mapping_source, '') AS mapping_source,
			COALESCE(profile_key, '') AS profile_key,
			COALESCE(period, '') AS period,
			imported_rows, dropped_rows,
			COALESCE(error_message, '') AS error_message
		FROM sheets_meta WHERE upload_id = ? ORDER BY id
	`, uploadID)
	if err != nil {
		return nil, fmt.Errorf("list sheets_meta: %w", err)
	}
	return out, nil
}

// BuildColumnsJSON 将列名序列化为 JSON（避免上层重复处理）
func BuildColumnsJSON(columns []string) string {
	if columns == nil {
		columns = []string{}
	}
	b, err := json.Marshal(columns)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func buildMappingJSON(mapping model.ColumnMapping) string {
	if mapping == nil {
		return ""
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return ""
	}
	return string(b)
}
