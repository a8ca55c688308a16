package profile

import (
	"errors"
	"fmt"
	"os"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/logger"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// DefaultFileName 默认 profile 文件名
const DefaultFileName = "column_profiles.json"

// Profiles 指纹 → 已确认的列映射
type Profiles map[string]model.ColumnMapping

// Repository 已确认映射的持久化接口（整文档读写）
type Repository interface {
	Load() Profiles
	Save(Profiles) error
	Get(key string) (model.ColumnMapping, bool)
	Put(key string, mapping model.ColumnMapping) error
}

// FileStore JSON 文件实现。Put 为读-改-写，不加锁，多个进程同时写会后写覆盖
type FileStore struct {
	path   string
	logger *logger.Logger
}

// NewFileStore 创建文件存储
func NewFileStore(path string, log *logger.Logger) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path, logger: logger.OrNop(log)}
}

// Path 文件路径
func (s *FileStore) Path() string {
	return s.path
}

// Load 读取全部 profile；文件不存在或内容损坏时返回空集合
func (s *FileStore) Load() Profiles {
	var doc map[string]map[string]string
	if err := decodeFile(s.path, &doc); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("profile 文件无法解析，按空集合处理", "path", s.path, "error", err)
		}
		return Profiles{}
	}

	out := make(Profiles, len(doc))
	for key, raw := range doc {
		mapping := model.NewColumnMapping()
		for name, col := range raw {
			if role, ok := model.ParseRole(name); ok {
				mapping[role] = col
			}
		}
		out[key] = mapping
	}
	return out
}

// Save 整体覆盖写入
func (s *FileStore) Save(profiles Profiles) error {
	doc := make(map[string]map[string]string, len(profiles))
	for key, mapping := range profiles {
		entry := make(map[string]string, len(model.AllRoles))
		for _, role := range model.AllRoles {
			entry[string(role)] = mapping.Get(role)
		}
		doc[key] = entry
	}
	if err := replaceFile(s.path, doc); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	return nil
}

// Get 按指纹读取映射
func (s *FileStore) Get(key string) (model.ColumnMapping, bool) {
	mapping, ok := s.Load()[key]
	return mapping, ok
}

// Put 写入（覆盖）单个指纹的映射
func (s *FileStore) Put(key string, mapping model.ColumnMapping) error {
	if key == "" {
		return errors.New("profile key is required")
	}
	profiles := s.Load()
	profiles[key] = mapping.Clone()
	return s.Save(profiles)
}
