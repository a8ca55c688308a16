package profile

import (
	"errors"
	"sync"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// MemoryStore 内存实现（未配置 profile 文件时使用，进程退出即丢失）
type MemoryStore struct {
	profiles Profiles
	mu       sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(Profiles)}
}

// Load 返回文档副本
func (s *MemoryStore) Load() Profiles {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Profiles, len(s.profiles))
	for k, m := range s.profiles {
		out[k] = m.Clone()
	}
	return out
}

// Save 整体替换
func (s *MemoryStore) Save(profiles Profiles) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = make(Profiles, len(profiles))
	for k, m := range profiles {
		s.profiles[k] = m.Clone()
	}
	return nil
}

// Get 按指纹读取映射
func (s *MemoryStore) Get(key string) (model.ColumnMapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.profiles[key]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// Put 写入（覆盖）单个指纹的映射
func (s *MemoryStore) Put(key string, mapping model.ColumnMapping) error {
	if key == "" {
		return errors.New("profile key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[key] = mapping.Clone()
	return nil
}
