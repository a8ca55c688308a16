package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const metaLatestReportMonth = "latest_report_month"

// GetMeta 获取元信息；不存在时返回空串
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}

// SetMeta 设置元信息
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// LatestReportMonth 最近一次写入的报告月（YYYY-MM-01）
func (s *Store) LatestReportMonth() (string, error) {
	return s.GetMeta(metaLatestReportMonth)
}

// bumpLatestReportMonth 只在新月份更晚时更新
func (s *Store) bumpLatestReportMonth(month string) error {
	current, err := s.LatestReportMonth()
	if err != nil {
		return err
	}
	if month <= current {
		return nil
	}
	return s.SetMeta(metaLatestReportMonth, month)
}
