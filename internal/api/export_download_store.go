package api

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// exportTTL 导出文件下载链接有效期
const exportTTL = 10 * time.Minute

type exportDownload struct {
	filePath  string
	fileName  string
	expiresAt time.Time
}

// exportDownloadStore 一次性下载令牌 → 导出文件；过期条目连同文件一起清理
type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportDownload
	now   func() time.Time
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{
		items: make(map[string]exportDownload),
		now:   time.Now,
	}
}

func (s *exportDownloadStore) put(filePath, fileName string, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	token := uuid.NewString()
	s.items[token] = exportDownload{filePath: filePath, fileName: fileName, expiresAt: s.now().Add(ttl)}
	return token
}

// take 取出并作废令牌
func (s *exportDownloadStore) take(token string) (exportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	item, ok := s.items[token]
	delete(s.items, token)
	return item, ok
}

func (s *exportDownloadStore) sweepLocked() {
	now := s.now()
	for token, item := range s.items {
		if now.After(item.expiresAt) {
			_ = os.Remove(item.filePath)
			delete(s.items, token)
		}
	}
}
