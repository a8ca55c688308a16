package store

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const (
	// DefaultFileName 默认数据库文件名
	DefaultFileName = "spins.db"
	// SchemaVersion 当前表结构版本，写入 meta 表
	SchemaVersion = "1"

	metaSchemaVersion = "schema_version"
)

// Store SQLite 事实库（sqlx）
type Store struct {
	db   *sqlx.DB
	path string
}

// New 打开（必要时创建）dbPath 处的数据库并建表
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// 外键约束 + 写锁等待，避免 API 与 CLI 同时写时立即报 database is locked
	dsn := dbPath + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // SQLite 建议单连接

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate 执行幂等建表语句并记录结构版本
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s.SetMeta(metaSchemaVersion, SchemaVersion)
}

// Path 数据库文件路径
func (s *Store) Path() string {
	return s.path
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
