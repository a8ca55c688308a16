package store

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Upload 上传记录
type Upload struct {
	ID            int64          `db:"id" json:"id"`
	Filename      string         `db:"filename" json:"filename"`
	FileHashSHA1  string         `db:"file_hash_sha1" json:"fileHashSha1"`
	UploadedAtUTC string         `db:"uploaded_at_utc" json:"uploadedAtUtc"`
	Notes         sql.NullString `db:"notes" json:"-"`
	Status        string         `db:"status" json:"status"`
	TotalSheets   int            `db:"total_sheets" json:"totalSheets"`
	ImportedRows  int            `db:"imported_rows" json:"importedRows"`
	ErrorMessage  sql.NullString `db:"error_message" json:"-"`
}

// FileSHA1 计算文件 SHA-1（上传去重键）
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// UploadImported 上传记录已成功导入时的状态值
const UploadImported = "imported"

// FindUploadByHash 按文件 SHA-1 查找上传记录；不存在时返回 nil
func (s *Store) FindUploadByHash(hash string) (*Upload, error) {
	var u Upload
	if err := s.db.Get(&u, "SELECT * FROM uploads WHERE file_hash_sha1 = ?", hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find upload: %w", err)
	}
	return &u, nil
}

// ReopenUpload 复用未成功导入（skipped/error/processing）的上传记录重新导入：
// 清掉上次的 sheet 元信息并把记录重置为 processing
func (s *Store) ReopenUpload(id int64, filename, notes string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin reopen upload: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sheets_meta WHERE upload_id = ?", id); err != nil {
		return fmt.Errorf("clear sheets_meta: %w", err)
	}
	res, err := tx.Exec(`
		UPDATE uploads SET
			filename = ?,
			uploaded_at_utc = ?,
			notes = ?,
			status = 'processing',
			total_sheets = 0,
			imported_rows = 0,
			error_message = NULL
		WHERE id = ?
	`, filename, time.Now().UTC().Format(time.RFC3339), notes, id)
	if err != nil {
		return fmt.Errorf("reset upload: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("upload %d not found", id)
	}
	return tx.Commit()
}

// RecordUpload 创建上传记录，返回 upload_id
func (s *Store) RecordUpload(filename, hash, notes string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO uploads (filename, file_hash_sha1, uploaded_at_utc, notes, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, filename, hash, time.Now().UTC().Format(time.RFC3339), notes)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get upload id: %w", err)
	}
	return id, nil
}

// FinishUpload 完成上传记录更新
func (s *Store) FinishUpload(id int64, status string, totalSheets, importedRows int, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE uploads SET
			status = ?,
			total_sheets = ?,
			imported_rows = ?,
			error_message = ?
		WHERE id = ?
	`, status, totalSheets, importedRows, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update upload: %w", err)
	}
	return nil
}

// GetUpload 按 id 读取上传记录
func (s *Store) GetUpload(id int64) (*Upload, error) {
	var u Upload
	if err := s.db.Get(&u, "SELECT * FROM uploads WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("upload %d not found", id)
		}
		return nil, fmt.Errorf("get upload: %w", err)
	}
	return &u, nil
}
