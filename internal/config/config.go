package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// FileName 默认配置文件名
const FileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Ingest IngestConfig `toml:"ingest"`
	Log    LogConfig    `toml:"log"`

	// BaseDir 相对路径的基准目录（配置文件所在目录），不写入文件
	BaseDir string `toml:"-"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir     string `toml:"data_dir"`
	ProfilePath string `toml:"profile_path"` // 为空时为 BaseDir/column_profiles.json
	DBPath      string `toml:"db_path"`      // 为空时为 BaseDir/spins.db
}

// IngestConfig 导入配置
type IngestConfig struct {
	Brand           string   `toml:"brand"`
	Anchor          string   `toml:"anchor"`
	MaxScan         int      `toml:"max_scan"`
	PeriodLookback  int      `toml:"period_lookback"`
	PreferredSheets []string `toml:"preferred_sheets"`
	PatternsFile    string   `toml:"patterns_file"` // YAML 规则覆盖文件
}

// LogConfig 日志配置
type LogConfig struct {
	Mode string `toml:"mode"` // development / production
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Ingest: IngestConfig{
			Brand:          "NEOLEA",
			Anchor:         "row labels",
			MaxScan:        200,
			PeriodLookback: 5,
		},
		Log: LogConfig{
			Mode: "development",
		},
		BaseDir: ".",
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 默认配置路径：可执行文件同目录下的 config.toml，不存在时为当前目录
func DefaultPath() string {
	if exeDir, err := GetExeDir(); err == nil {
		p := filepath.Join(exeDir, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return FileName
}

// Load 加载配置。path 为空时使用 DefaultPath；文件不存在时使用默认配置。
// 加载顺序：默认值 → config.toml → 同目录 .env → 环境变量
func Load(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadConfigInfo{Path: path}
	cfg := DefaultConfig()
	cfg.BaseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, fmt.Errorf("read %s: %w", path, err)
	}

	// .env 不覆盖已存在的环境变量
	envPath := filepath.Join(cfg.BaseDir, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, info, fmt.Errorf("load %s: %w", envPath, err)
	}

	if err := applyEnv(cfg, &info); err != nil {
		return nil, info, err
	}
	return cfg, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(cfg *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv("VELOCITY_PROFILE_PATH"); v != "" {
		cfg.Data.ProfilePath = v
	}
	if v := os.Getenv("SPINS_DB_PATH"); v != "" {
		cfg.Data.DBPath = v
	}
	if v := os.Getenv("VELOCITY_DATA_DIR"); v != "" {
		cfg.Data.DataDir = v
	}
	if v := os.Getenv("VELOCITY_BRAND"); v != "" {
		cfg.Ingest.Brand = v
	}
	if v := os.Getenv("VELOCITY_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("VELOCITY_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid VELOCITY_PORT %q", v)
		}
		cfg.Server.Port = port
		info.PortSpecified = true
	}
	return nil
}

// SaveConfig 保存配置到 path
func SaveConfig(path string, cfg *AppConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *AppConfig) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// DataDir 数据目录（已按 BaseDir 解析）
func (c *AppConfig) DataDir() string {
	return c.resolve(c.Data.DataDir)
}

// ProfilePath 列映射 profile 文件路径
func (c *AppConfig) ProfilePath() string {
	if c.Data.ProfilePath != "" {
		return c.resolve(c.Data.ProfilePath)
	}
	return filepath.Join(c.BaseDir, "column_profiles.json")
}

// DBPath SQLite 文件路径
func (c *AppConfig) DBPath() string {
	if c.Data.DBPath != "" {
		return c.resolve(c.Data.DBPath)
	}
	return filepath.Join(c.BaseDir, "spins.db")
}

// PatternsFile 规则覆盖文件路径（未配置时为空）
func (c *AppConfig) PatternsFile() string {
	return c.resolve(c.Ingest.PatternsFile)
}

// EnsureDataDir 确保数据目录及 uploads/exports 子目录存在
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dataDir := cfg.DataDir()

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"uploads", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(cfg *AppConfig, subdir, filename string) string {
	return filepath.Join(cfg.DataDir(), subdir, filename)
}
