package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"toyshelf/internal/search"
)

// DefaultFileName 默认配置文件名
const DefaultFileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Search SearchConfig `toml:"search"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port             int  `toml:"port"`
	DevMode          bool `toml:"dev_mode"`
	OpenBrowser      bool `toml:"open_browser"`
	RefreshPerMinute int  `toml:"refresh_per_minute"` // 0 表示不限制
}

// DataConfig 数据文件配置
type DataConfig struct {
	Workbook  string `toml:"workbook"`
	CacheFile string `toml:"cache_file"`
	HistoryDB string `toml:"history_db"` // 为空时不记录加载历史
}

// SearchConfig 图片搜索配置
type SearchConfig struct {
	Endpoint string   `toml:"endpoint"`
	Terms    []string `toml:"terms"`
}

// LoadInfo 配置加载元信息
type LoadInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:             5000,
			DevMode:          false,
			OpenBrowser:      true,
			RefreshPerMinute: 30,
		},
		Data: DataConfig{
			Workbook:  "list.xlsx",
			CacheFile: "data_cache.json",
			HistoryDB: filepath.Join("data", "toyshelf.db"),
		},
		Search: SearchConfig{
			Endpoint: search.DefaultEndpoint,
			Terms:    append([]string(nil), search.DefaultTerms...),
		},
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

// DefaultPath 默认配置文件路径：当前目录优先，其次为可执行文件目录
func DefaultPath() string {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	exeDir, err := GetExeDir()
	if err != nil {
		return DefaultFileName
	}
	candidate := filepath.Join(exeDir, DefaultFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return DefaultFileName
}

// Load 从 TOML 文件加载配置；文件不存在时使用默认配置
func Load(path string) (*AppConfig, LoadInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadInfo{Path: path}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, info, err
	}
	return cfg, info, nil
}

// 环境变量覆盖（用于测试 / 本地运行）
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("TOYSHELF_WORKBOOK"); v != "" {
		cfg.Data.Workbook = v
	}
	if v := os.Getenv("TOYSHELF_CACHE_FILE"); v != "" {
		cfg.Data.CacheFile = v
	}
	if v, ok := os.LookupEnv("TOYSHELF_HISTORY_DB"); ok {
		cfg.Data.HistoryDB = v
	}
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.RefreshPerMinute < 0 {
		errs = append(errs, fmt.Errorf("server.refresh_per_minute must not be negative: %d", c.Server.RefreshPerMinute))
	}
	if c.Data.Workbook == "" {
		errs = append(errs, errors.New("data.workbook is required"))
	}
	if c.Data.CacheFile == "" {
		errs = append(errs, errors.New("data.cache_file is required"))
	}
	if _, err := search.NewBuilder(c.Search.Endpoint, c.Search.Terms, nil); err != nil {
		errs = append(errs, fmt.Errorf("search.endpoint: %w", err))
	}
	return errors.Join(errs...)
}

// Save 保存配置到 TOML 文件
func Save(path string, cfg *AppConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
