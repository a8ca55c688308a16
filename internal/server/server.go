package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/api"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/app"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/config"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	app    *app.App
	api    *api.Handler
	http   *http.Server
}

// NewServer 创建服务器
func NewServer(a *app.App) (*Server, error) {
	cfg := a.Config
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := a.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	handler := api.NewHandler(api.Deps{
		Store:     st,
		Profiles:  a.Profiles,
		Ingest:    a.Ingest,
		UploadDir: filepath.Join(dataDir, "uploads"),
		ExportDir: filepath.Join(dataDir, "exports"),
		Logger:    a.Logger.With("component", "api"),
	})

	s := &Server{
		router: gin.New(),
		app:    a,
		api:    handler,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes(devMode)

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "velocity", "api": "/api/status"})
	})
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// requestLogger 访问日志（zap）
func (s *Server) requestLogger() gin.HandlerFunc {
	log := s.app.Logger.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Handler 底层 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，阻塞直到 Shutdown
func (s *Server) Run(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.router}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭 HTTP 服务并关闭数据库
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if cerr := s.app.Close(); err == nil {
		err = cerr
	}
	return err
}
