package app

import (
	"fmt"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/config"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/importer"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/logger"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/parser"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/profile"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/store"
)

// App 按配置装配的运行时组件
type App struct {
	Config   *config.AppConfig
	Logger   *logger.Logger
	Profiles *profile.FileStore
	Ingest   importer.Options

	store *store.Store
}

// New 按配置创建日志、profile 存储与导入选项；数据库按需打开
func New(cfg *config.AppConfig) (*App, error) {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rules, err := parser.LoadRules(cfg.PatternsFile())
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   log,
		Profiles: profile.NewFileStore(cfg.ProfilePath(), log),
		Ingest: importer.Options{
			Brand:           cfg.Ingest.Brand,
			Anchor:          cfg.Ingest.Anchor,
			MaxScan:         cfg.Ingest.MaxScan,
			PeriodLookback:  importer.IntPtr(cfg.Ingest.PeriodLookback),
			PreferredSheets: cfg.Ingest.PreferredSheets,
			Rules:           rules,
		}.WithDefaults(),
	}, nil
}

// Coordinator 新建导入协调器
func (a *App) Coordinator() *importer.Coordinator {
	return importer.NewCoordinator(a.Ingest, a.Profiles, a.Logger)
}

// Store 打开（或复用）SQLite 存储
func (a *App) Store() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	st, err := store.New(a.Config.DBPath())
	if err != nil {
		return nil, err
	}
	a.store = st
	return st, nil
}

// Close 关闭数据库并刷新日志
func (a *App) Close() error {
	defer a.Logger.Sync()
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
