// app.go - Wails 应用核心结构
// 组装配置、日志、自动化引擎与窗口/托盘控制器，并管理它们的生命周期

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/automation"
	"anan-sketchbook/internal/desktop"
	"anan-sketchbook/internal/lifecycle"
	"anan-sketchbook/internal/logging"
	"anan-sketchbook/internal/metrics"
)

// App 是 Wails 应用的核心结构
// 它持有所有组件，并把方法暴露给前端调用
type App struct {
	// Wails 上下文
	ctx    context.Context
	cancel context.CancelFunc

	// 命令行参数
	configPath string
	logLevel   string

	// 核心组件
	holder        *config.Holder
	configWatcher *config.ConfigWatcher
	logger        *slog.Logger
	logHandler    *logging.BroadcastHandler
	logEmitter    *logging.EventEmitter
	metrics       *metrics.Metrics
	engine        *automation.Engine
	window        *wailsWindow
	controller    *lifecycle.Controller

	startTime time.Time
	mu        sync.RWMutex
}

// NewApp 创建新的应用实例
func NewApp(configPath, logLevel string) *App {
	return &App{
		configPath: configPath,
		logLevel:   logLevel,
		startTime:  time.Now(),
	}
}

// startup 在 Wails 应用启动时调用
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	// 1. 加载配置
	cfg, found := a.loadConfig()

	// 2. 初始化日志
	a.setupLogger(cfg)
	a.logger.Info("🚀 安安的素描本聊天框启动中...",
		"version", Version,
		"config_file", a.configPath,
		"config_found", found)

	// 3. 指标
	a.setupMetrics(runCtx, cfg)

	// 4. 配置句柄 + 自动化引擎
	a.holder = config.NewHolder(cfg)
	a.engine = automation.New(automation.Options{
		Holder:  a.holder,
		Bind:    desktop.Bind,
		Action:  desktop.ClipboardProbe(a.logger),
		Logger:  a.logger,
		Metrics: a.metrics,
	})
	a.holder.SetRebinder(a.engine)
	if err := a.engine.Start(runCtx); err != nil {
		// 热键被占用时程序仍可使用，用户可以在配置页换一个热键
		a.logger.Warn("⚠️ 全局热键注册失败，请在配置页修改热键", "error", err)
	}
	a.holder.OnChange(a.emitConfigChanged)

	// 5. 窗口/托盘控制器
	a.window = newWailsWindow(ctx)
	a.controller = lifecycle.New(runCtx, lifecycle.Options{
		Window:       a.window,
		Prompter:     newWailsPrompter(ctx),
		Engine:       a.engine,
		Config:       a.holder,
		Tray:         newTrayBackend(a.holder),
		Logger:       a.logger,
		Metrics:      a.metrics,
		OnTransition: a.onWindowTransition,
	})
	go a.controller.Run()

	// 6. 配置热重载（只在使用外部配置文件时）
	if found {
		a.setupConfigReload()
	}

	a.logger.Info("✅ 启动完成", "hotkey", a.engine.Hotkey())
}

// loadConfig 读取配置文件，文件不存在时使用内置默认配置
func (a *App) loadConfig() (*config.Config, bool) {
	cfg, found, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		slog.Default().Error("❌ 配置文件无效，使用内置默认配置", "path", a.configPath, "error", err)
		return config.Default(), false
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	return cfg, found
}

// setupLogger 设置日志；日志页通过 log:batch 事件增量接收
func (a *App) setupLogger(cfg *config.Config) {
	emitter := logging.NewEventEmitter(a.emitLogBatch)
	logger, handler := logging.Setup(cfg.Logging.Level, cfg.Logging.HistoryLines, os.Stdout, emitter)

	a.logger = logger
	a.logHandler = handler
	a.logEmitter = emitter
	slog.SetDefault(logger)

	a.logger.Info("✅ 日志系统初始化完成",
		"level", cfg.Logging.Level,
		"history_lines", cfg.Logging.HistoryLines)
}

func (a *App) setupMetrics(ctx context.Context, cfg *config.Config) {
	a.metrics = metrics.New()
	if !cfg.Metrics.Enabled {
		return
	}
	go func() {
		if err := a.metrics.Serve(ctx, cfg.Metrics.Listen, a.logger); err != nil {
			a.logger.Error("❌ 指标服务启动失败", "addr", cfg.Metrics.Listen, "error", err)
		}
	}()
}

// setupConfigReload 外部修改配置文件后走 Holder.Replace，与界面应用配置是同一条路径
func (a *App) setupConfigReload() {
	watcher, err := config.NewConfigWatcher(a.configPath, a.logger)
	if err != nil {
		a.logger.Warn("⚠️ 配置热重载不可用", "error", err)
		return
	}
	watcher.AddReloadCallback(func(cfg *config.Config) {
		if _, err := a.holder.Replace(*cfg); err != nil {
			a.logger.Error("❌ 重新加载的配置未能生效", "error", err)
			a.emitNotification("error", "配置重载失败", err.Error())
			return
		}
		a.emitNotification("info", "配置已重新加载", a.configPath)
	})

	a.mu.Lock()
	a.configWatcher = watcher
	a.mu.Unlock()
}

// onWindowTransition 控制器状态变化时同步给前端
func (a *App) onWindowTransition(from, to lifecycle.State) {
	a.logger.Debug("窗口状态变化", "from", from.String(), "to", to.String())
	a.emitWindowState()
}

// domReady 在前端 DOM 准备就绪时调用
func (a *App) domReady(ctx context.Context) {
	if a.logEmitter != nil {
		a.logEmitter.Start(ctx)
	}
	a.emitWindowState()
}

// beforeClose 在窗口关闭前调用，返回 true 阻止关闭
func (a *App) beforeClose(ctx context.Context) bool {
	c := a.controller
	if c == nil || c.State() == lifecycle.StateExited {
		return false
	}

	// 对话框是模态的，不能阻塞 BeforeClose 回调所在的 UI 线程
	go func() {
		if err := c.RequestClose(); err != nil && !errors.Is(err, lifecycle.ErrExited) {
			a.logger.Warn("⚠️ 处理关闭请求失败", "error", err)
		}
	}()
	return true
}

// shutdown 在 Wails 应用关闭时调用
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	logger := a.logger
	configWatcher := a.configWatcher
	logEmitter := a.logEmitter
	a.mu.Unlock()

	if logger != nil {
		logger.Info("🛑 正在关闭...")
	}

	// 1. 控制器退出：释放托盘并停止自动化引擎（已退出时无操作）
	if a.window != nil {
		a.window.markQuitting()
	}
	if a.controller != nil {
		a.controller.Exit()
	} else if a.engine != nil {
		a.engine.Stop()
	}

	// 2. 关闭配置监听
	if configWatcher != nil {
		_ = configWatcher.Close()
	}

	// 3. 停止指标服务与命令循环
	if a.cancel != nil {
		a.cancel()
	}

	// 4. 停止日志事件发射器
	if logEmitter != nil {
		logEmitter.Stop()
	}

	if logger != nil {
		logger.Info("✅ 已关闭", "uptime", time.Since(a.startTime).Round(time.Second).String())
	}
}
