package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce 编辑器保存时往往连续触发多次写事件
const reloadDebounce = 500 * time.Millisecond

// ConfigWatcher handles automatic configuration reloading
type ConfigWatcher struct {
	configPath    string
	config        *Config
	mutex         sync.RWMutex
	watcher       *fsnotify.Watcher
	logger        *slog.Logger
	callbacks     []func(*Config)
	lastModTime   time.Time
	debounceTimer *time.Timer
	done          chan struct{}
}

// NewConfigWatcher creates a new configuration watcher
func NewConfigWatcher(configPath string, logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cw := &ConfigWatcher{
		configPath:  configPath,
		config:      config,
		watcher:     watcher,
		logger:      logger,
		lastModTime: fileInfo.ModTime(),
		done:        make(chan struct{}),
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	go cw.watchLoop()

	return cw, nil
}

// GetConfig returns the current configuration (thread-safe)
func (cw *ConfigWatcher) GetConfig() *Config {
	cw.mutex.RLock()
	defer cw.mutex.RUnlock()
	return cw.config
}

// AddReloadCallback adds a callback function that will be called when config is reloaded
func (cw *ConfigWatcher) AddReloadCallback(callback func(*Config)) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

func (cw *ConfigWatcher) watchLoop() {
	for {
		select {
		case <-cw.done:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fileInfo, err := os.Stat(cw.configPath)
				if err != nil {
					cw.logger.Warn("⚠️ 无法获取配置文件信息", "error", err)
					continue
				}

				cw.mutex.Lock()
				if !fileInfo.ModTime().After(cw.lastModTime) {
					cw.mutex.Unlock()
					continue
				}
				cw.lastModTime = fileInfo.ModTime()

				if cw.debounceTimer != nil {
					cw.debounceTimer.Stop()
				}
				cw.debounceTimer = time.AfterFunc(reloadDebounce, func() {
					cw.logger.Info("🔄 检测到配置文件变更，正在重新加载...", "file", event.Name)
					if err := cw.reloadConfig(); err != nil {
						cw.logger.Error("❌ 配置文件重新加载失败", "error", err)
					} else {
						cw.logger.Info("✅ 配置文件重新加载成功")
					}
				})
				cw.mutex.Unlock()
			}

			// 部分编辑器保存时先删除/重命名再写入
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				time.Sleep(100 * time.Millisecond)
				if _, err := os.Stat(cw.configPath); err == nil {
					if err := cw.watcher.Add(cw.configPath); err == nil {
						cw.logger.Info("🔄 重新监听配置文件", "file", cw.configPath)
					}
				}
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("⚠️ 配置文件监听错误", "error", err)
		}
	}
}

// reloadConfig reloads the configuration from file
func (cw *ConfigWatcher) reloadConfig() error {
	newConfig, err := LoadConfig(cw.configPath)
	if err != nil {
		return err
	}

	cw.mutex.Lock()
	oldConfig := cw.config
	cw.config = newConfig
	callbacks := make([]func(*Config), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mutex.Unlock()

	cw.logConfigChanges(oldConfig, newConfig)

	for _, callback := range callbacks {
		callback(newConfig)
	}
	return nil
}

func (cw *ConfigWatcher) logConfigChanges(oldConfig, newConfig *Config) {
	if oldConfig.Hotkey != newConfig.Hotkey {
		cw.logger.Info("⌨️ 全局热键变更",
			"old_hotkey", oldConfig.Hotkey,
			"new_hotkey", newConfig.Hotkey)
	}

	if oldConfig.Delay != newConfig.Delay {
		cw.logger.Info("⏱️ 操作延迟变更",
			"old_delay", oldConfig.Delay,
			"new_delay", newConfig.Delay)
	}

	if oldConfig.TextBoxTopLeft != newConfig.TextBoxTopLeft ||
		oldConfig.ImageBoxBottomRight != newConfig.ImageBoxBottomRight {
		cw.logger.Info("📐 文本框坐标变更",
			"topleft", newConfig.TextBoxTopLeft.String(),
			"bottomright", newConfig.ImageBoxBottomRight.String())
	}

	if oldConfig.Logging.Level != newConfig.Logging.Level {
		cw.logger.Info("📝 日志级别变更（重启后生效）",
			"old_level", oldConfig.Logging.Level,
			"new_level", newConfig.Logging.Level)
	}
}

// Close stops the configuration watcher
func (cw *ConfigWatcher) Close() error {
	cw.mutex.Lock()
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	select {
	case <-cw.done:
	default:
		close(cw.done)
	}
	cw.mutex.Unlock()
	return cw.watcher.Close()
}
