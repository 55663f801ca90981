// Package lifecycle 主窗口与托盘图标之间的状态机。
//
// 任一时刻只有一个用户可见的形态：主窗口（Visible）或托盘图标（Minimized）。
// 托盘 goroutine 不直接操作窗口，而是通过 Post 把命令投递到控制器的命令队列，
// 由 Run 所在的 goroutine 逐条执行。
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/metrics"
)

const defaultMailboxSize = 16

// Options 控制器依赖
type Options struct {
	Window   Window
	Prompter Prompter
	Engine   Engine
	Config   ConfigApplier
	// Tray 为 nil 等同于没有托盘后端
	Tray    TrayBackend
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// OnTransition 状态变化后调用（不持有任何锁）
	OnTransition func(from, to State)

	MailboxSize int
}

// Controller 窗口/托盘生命周期控制器
type Controller struct {
	ctx context.Context

	window   Window
	prompter Prompter
	engine   Engine
	config   ConfigApplier
	tray     TrayBackend
	logger   *slog.Logger
	metrics  *metrics.Metrics
	notify   func(from, to State)

	// opMu 串行化所有会改变窗口状态的操作，相当于单线程 UI 循环
	opMu sync.Mutex

	mu        sync.Mutex
	state     State
	handle    TrayHandle
	prompting bool

	commands chan Command
	done     chan struct{}
}

// New 创建控制器，初始状态为 Visible
func New(ctx context.Context, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = defaultMailboxSize
	}
	return &Controller{
		ctx:      ctx,
		window:   opts.Window,
		prompter: opts.Prompter,
		engine:   opts.Engine,
		config:   opts.Config,
		tray:     opts.Tray,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		notify:   opts.OnTransition,
		state:    StateVisible,
		commands: make(chan Command, opts.MailboxSize),
		done:     make(chan struct{}),
	}
}

// State 当前窗口状态
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TrayActive 是否持有托盘图标
func (c *Controller) TrayActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// Done 在 Exit 之后关闭
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Minimize 隐藏主窗口并显示托盘图标；没有托盘后端时退回到系统最小化。
// 只有从 Visible 进入时才会启动托盘，因此不会同时存在两个托盘图标。
func (c *Controller) Minimize() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	state, handle := c.state, c.handle
	c.mu.Unlock()

	switch {
	case state == StateExited:
		return ErrExited
	case state == StateMinimized && handle != nil:
		return nil
	case state == StateMinimized:
		// 没有托盘时窗口可能已被用户从任务栏恢复，控制器收不到通知，再最小化一次
		c.window.Hide()
		c.window.Iconify()
		c.logger.Info("📥 已最小化（无托盘）")
		return nil
	}

	c.window.Hide()

	handle = c.startTray()
	if handle == nil {
		c.window.Iconify()
	}

	c.transition(StateMinimized, handle)
	if handle != nil {
		c.logger.Info("📥 已最小化到托盘", "tray_id", handle.ID())
	} else {
		c.logger.Info("📥 已最小化（无托盘）")
	}
	return nil
}

func (c *Controller) startTray() TrayHandle {
	if c.tray == nil || !c.tray.Available() {
		return nil
	}

	handle, err := c.tray.Start(c.ctx, TrayMenu{
		OnShow: func() { c.Post(CommandRestore) },
		OnQuit: func() { c.Post(CommandClose) },
	})
	if err != nil {
		c.logger.Warn("⚠️ 托盘图标启动失败，改用系统最小化", "error", err)
		return nil
	}
	return handle
}

// Restore 释放托盘图标并显示主窗口；已处于 Visible 时重复调用无副作用。
func (c *Controller) Restore() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state == StateExited {
		c.mu.Unlock()
		return ErrExited
	}
	handle := c.handle
	c.mu.Unlock()

	// 不等待托盘 goroutine 完全退出
	if handle != nil {
		handle.Stop()
	}

	c.window.Show()
	c.window.Raise()

	c.transition(StateVisible, nil)
	if handle != nil {
		c.logger.Info("📤 已从托盘恢复窗口", "tray_id", handle.ID())
	}
	return nil
}

// RequestClose 响应窗口关闭按钮：弹出模态对话框（隐藏 / 关闭 / 取消）并执行所选命令。
// 对话框已打开时的重复请求会被忽略。
func (c *Controller) RequestClose() error {
	c.mu.Lock()
	if c.state == StateExited {
		c.mu.Unlock()
		return ErrExited
	}
	if c.prompting {
		c.mu.Unlock()
		return nil
	}
	c.prompting = true
	c.mu.Unlock()

	cmd := c.prompter.AskClose()

	c.mu.Lock()
	c.prompting = false
	c.mu.Unlock()

	c.logger.Debug("关闭确认", "choice", cmd.String())
	return c.Dispatch(cmd)
}

// Dispatch 执行一条命令
func (c *Controller) Dispatch(cmd Command) error {
	switch cmd {
	case CommandHide:
		return c.Minimize()
	case CommandClose:
		c.Exit()
		return nil
	case CommandCancel:
		if c.State() == StateExited {
			return ErrExited
		}
		return nil
	case CommandRestore:
		return c.Restore()
	default:
		return fmt.Errorf("lifecycle: unknown command %d", int(cmd))
	}
}

// Exit 释放托盘图标、通知自动化引擎停止并关闭窗口。只有第一次调用生效。
func (c *Controller) Exit() {
	c.opMu.Lock()

	c.mu.Lock()
	if c.state == StateExited {
		c.mu.Unlock()
		c.opMu.Unlock()
		return
	}
	handle := c.handle
	c.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
	c.transition(StateExited, nil)

	c.logger.Info("🛑 正在退出...")
	if c.engine != nil {
		c.engine.Stop()
	}
	close(c.done)
	c.opMu.Unlock()

	// Destroy 可能同步回调 State()，放在锁外
	c.window.Destroy()
}

// ApplyConfig 把表单写入配置并重新注册热键，结果通过对话框告知用户。
// 不改变窗口状态。
func (c *Controller) ApplyConfig(form config.Form) error {
	if c.State() == StateExited {
		return ErrExited
	}

	cfg, err := c.config.Apply(form)
	if c.metrics != nil {
		c.metrics.ConfigApply.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err != nil {
		c.logger.Error("❌ 应用配置失败", "error", err)
		c.prompter.Error("错误", fmt.Sprintf("应用配置时发生错误: %v", err))
		return err
	}

	c.logger.Info("✅ 配置已应用",
		"hotkey", cfg.Hotkey,
		"delay", cfg.Delay,
		"topleft", cfg.TextBoxTopLeft.String(),
		"bottomright", cfg.ImageBoxBottomRight.String())
	c.prompter.Info("提示", "配置已应用")
	return nil
}

// SaveConfig 保存到磁盘尚未提供，只提示用户
func (c *Controller) SaveConfig() {
	c.prompter.Info("提示", "配置保存功能将在后续实现")
}

// Post 从任意 goroutine 投递命令，不阻塞；队列满时丢弃并返回 false
func (c *Controller) Post(cmd Command) bool {
	select {
	case c.commands <- cmd:
		return true
	default:
		c.logger.Warn("⚠️ 命令队列已满，丢弃命令", "command", cmd.String())
		return false
	}
}

// Run 逐条执行投递的命令，直到 ctx 结束或控制器退出
func (c *Controller) Run() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.done:
			return
		case cmd := <-c.commands:
			if err := c.Dispatch(cmd); err != nil {
				c.logger.Warn("⚠️ 命令执行失败", "command", cmd.String(), "error", err)
			}
		}
	}
}

// transition 在 opMu 保护下调用
func (c *Controller) transition(to State, handle TrayHandle) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.handle = handle
	c.mu.Unlock()

	if c.metrics != nil {
		if from != to {
			c.metrics.Transitions.WithLabelValues(from.String(), to.String()).Inc()
		}
		if handle != nil {
			c.metrics.TrayActive.Set(1)
		} else {
			c.metrics.TrayActive.Set(0)
		}
	}
	if c.notify != nil && from != to {
		c.notify(from, to)
	}
}
