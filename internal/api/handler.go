package api

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/importer"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/logger"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/profile"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/store"
)

// Deps 处理器依赖
type Deps struct {
	Store     *store.Store
	Profiles  profile.Repository // 为空时使用内存存储
	Ingest    importer.Options
	UploadDir string
	ExportDir string
	Logger    *logger.Logger
}

// Handler API 处理器
type Handler struct {
	store     *store.Store
	profiles  profile.Repository
	ingest    importer.Options
	uploadDir string
	exportDir string
	logger    *logger.Logger
	downloads *exportDownloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(d Deps) *Handler {
	uploadDir := d.UploadDir
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	exportDir := d.ExportDir
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	profiles := d.Profiles
	if profiles == nil {
		profiles = profile.NewMemoryStore()
	}
	return &Handler{
		store:     d.Store,
		profiles:  profiles,
		ingest:    d.Ingest.WithDefaults(),
		uploadDir: uploadDir,
		exportDir: exportDir,
		logger:    logger.OrNop(d.Logger),
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 映射确认
	router.POST("/sheets", h.ListSheets)
	router.POST("/mapping/suggest", h.SuggestMapping)
	router.GET("/profiles", h.ListProfiles)
	router.POST("/profiles", h.SaveProfile)

	// 数据导入
	router.POST("/import", h.Import)
	router.POST("/import/stream", h.ImportStream)

	// 数据查询
	router.GET("/months", h.ListMonths)
	router.GET("/facts", h.ListFacts)

	// 数据导出
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}

func (h *Handler) newCoordinator() *importer.Coordinator {
	return importer.NewCoordinator(h.ingest, h.profiles, h.logger)
}

// saveUploads 把上传文件保存到独立的临时目录，保留原始文件名（文件名里带报告日期）
func (h *Handler) saveUploads(c *gin.Context, files []*multipart.FileHeader) ([]string, func(), error) {
	var dirs []string
	cleanup := func() {
		for _, d := range dirs {
			_ = os.RemoveAll(d)
		}
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		dir := filepath.Join(h.uploadDir, uuid.NewString())
		if err := os.MkdirAll(dir, 0755); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("create upload dir: %w", err)
		}
		dirs = append(dirs, dir)

		path := filepath.Join(dir, filepath.Base(fh.Filename))
		if err := c.SaveUploadedFile(fh, path); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("save upload %s: %w", fh.Filename, err)
		}
		paths = append(paths, path)
	}
	return paths, cleanup, nil
}

// formFiles 读取 multipart 中的 file 字段
func formFiles(c *gin.Context) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, false
	}
	files := form.File["file"]
	return files, len(files) > 0
}
