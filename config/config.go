package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"anan-sketchbook/internal/hotkey"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// 嵌入默认配置文件
//
//go:embed config.yaml
var defaultConfigContent []byte

// Config 运行时配置（由 Holder 持有，UI 与自动化引擎共享同一份句柄）
type Config struct {
	Hotkey string `yaml:"hotkey" toml:"hotkey" json:"hotkey"`
	// 操作延迟（秒）
	Delay float64 `yaml:"delay" toml:"delay" json:"delay"`
	// 文本框区域
	TextBoxTopLeft      Point `yaml:"text_box_topleft" toml:"text_box_topleft" json:"text_box_topleft"`
	ImageBoxBottomRight Point `yaml:"image_box_bottomright" toml:"image_box_bottomright" json:"image_box_bottomright"`
	// 功能开关
	AutoPasteImage bool `yaml:"auto_paste_image" toml:"auto_paste_image" json:"auto_paste_image"`
	AutoSendImage  bool `yaml:"auto_send_image" toml:"auto_send_image" json:"auto_send_image"`
	BlockHotkey    bool `yaml:"block_hotkey" toml:"block_hotkey" json:"block_hotkey"`

	UI      UISettings    `yaml:"ui" toml:"ui" json:"ui"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
	Tray    TrayConfig    `yaml:"tray" toml:"tray" json:"tray"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics" json:"metrics"`
}

// Point 屏幕坐标
type Point struct {
	X int `yaml:"x" toml:"x" json:"x"`
	Y int `yaml:"y" toml:"y" json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// UISettings 界面字体设置
type UISettings struct {
	FontFamily    string `yaml:"font_family" toml:"font_family" json:"font_family"`
	FontSize      int    `yaml:"font_size" toml:"font_size" json:"font_size"`
	TitleFontSize int    `yaml:"title_font_size" toml:"title_font_size" json:"title_font_size"`
}

type LoggingConfig struct {
	Level        string `yaml:"level" toml:"level" json:"level"`
	HistoryLines int    `yaml:"history_lines" toml:"history_lines" json:"history_lines"` // 日志页保留的最大行数
}

// TrayConfig 托盘设置
type TrayConfig struct {
	Disabled bool   `yaml:"disabled" toml:"disabled" json:"disabled"` // 强制使用系统最小化
	Tooltip  string `yaml:"tooltip" toml:"tooltip" json:"tooltip"`
}

// MetricsConfig Prometheus 指标监听（默认关闭）
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Listen  string `yaml:"listen" toml:"listen" json:"listen"`
}

const (
	DefaultHotkey       = "ctrl+enter"
	DefaultFontFamily   = "Microsoft YaHei"
	DefaultFontSize     = 12
	DefaultTitleSize    = 14
	DefaultHistoryLines = 1000
	DefaultTrayTooltip  = "安安的素描本聊天框"
	DefaultMetricsAddr  = "127.0.0.1:9464"

	// MaxDelay 操作延迟上限（秒）
	MaxDelay = 3600.0
)

// Default 返回内置默认配置
func Default() *Config {
	cfg, err := ParseConfig(defaultConfigContent, "yaml")
	if err != nil {
		// 内置配置损坏属于构建错误
		panic(fmt.Sprintf("内置默认配置无效: %v", err))
	}
	return cfg
}

// LoadConfig loads configuration from file, format chosen by extension (.yaml/.yml/.toml)
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseConfig(data, formatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault 文件不存在时回退到内置默认配置
func LoadOrDefault(path string) (*Config, bool, error) {
	if path == "" {
		return Default(), false, nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// ParseConfig 解析配置内容，format 为 "yaml" 或 "toml"
func ParseConfig(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case "yaml", "":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if strings.TrimSpace(c.Hotkey) == "" {
		c.Hotkey = DefaultHotkey
	}
	if c.UI.FontFamily == "" {
		c.UI.FontFamily = DefaultFontFamily
	}
	if c.UI.FontSize == 0 {
		c.UI.FontSize = DefaultFontSize
	}
	if c.UI.TitleFontSize == 0 {
		c.UI.TitleFontSize = DefaultTitleSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.HistoryLines == 0 {
		c.Logging.HistoryLines = DefaultHistoryLines
	}
	if c.Tray.Tooltip == "" {
		c.Tray.Tooltip = DefaultTrayTooltip
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = DefaultMetricsAddr
	}
}

// validate 校验配置；Form.Parse 在提交前也会调用
func (c *Config) validate() error {
	var errs []error
	if _, err := hotkey.Parse(c.Hotkey); err != nil {
		errs = append(errs, fmt.Errorf("hotkey %q: %w", c.Hotkey, err))
	}
	if math.IsNaN(c.Delay) || math.IsInf(c.Delay, 0) || c.Delay < 0 || c.Delay > MaxDelay {
		errs = append(errs, fmt.Errorf("delay must be between 0 and %v seconds, got %v", MaxDelay, c.Delay))
	}
	if c.TextBoxTopLeft.X < 0 || c.TextBoxTopLeft.Y < 0 {
		errs = append(errs, fmt.Errorf("text_box_topleft must not be negative, got %s", c.TextBoxTopLeft))
	}
	if c.ImageBoxBottomRight.X < 0 || c.ImageBoxBottomRight.Y < 0 {
		errs = append(errs, fmt.Errorf("image_box_bottomright must not be negative, got %s", c.ImageBoxBottomRight))
	}
	if c.UI.FontSize < 0 || c.UI.TitleFontSize < 0 {
		errs = append(errs, fmt.Errorf("ui font sizes must not be negative"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of debug|info|warn|error, got %q", c.Logging.Level))
	}
	if c.Logging.HistoryLines < 0 {
		errs = append(errs, fmt.Errorf("logging.history_lines must not be negative"))
	}
	return errors.Join(errs...)
}

// normalize 把热键统一成规范写法（必须在 validate 之后调用）
func (c *Config) normalize() {
	if combo, err := hotkey.Parse(c.Hotkey); err == nil {
		c.Hotkey = combo.String()
	}
}

// Validate 校验配置（导出给 check-config 命令）
func (c *Config) Validate() error {
	return c.validate()
}
