// Package automation 全局热键驱动的自动化引擎。
//
// 引擎从 config.Holder 读取热键与延迟，按下热键后等待 delay 再执行动作。
// 系统热键注册通过 Binder 注入，真实实现在 internal/desktop。
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/hotkey"
	"anan-sketchbook/internal/metrics"
)

// ErrStopped 引擎已停止
var ErrStopped = errors.New("automation: engine stopped")

// Binding 一个已注册的系统热键
type Binding interface {
	// Events 每次按下热键收到一个值；注销后可以关闭
	Events() <-chan struct{}
	Unregister() error
}

// Binder 把解析后的热键注册到系统
type Binder func(combo hotkey.Combo) (Binding, error)

// Action 热键触发后执行的动作，cfg 是触发时的配置快照
type Action func(ctx context.Context, cfg config.Config)

type Options struct {
	Holder  *config.Holder
	Bind    Binder
	Action  Action
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Engine 自动化引擎，实现 config.Rebinder 与 lifecycle.Engine
type Engine struct {
	holder  *config.Holder
	bind    Binder
	action  Action
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	binding  Binding
	combo    string
	unlisten context.CancelFunc
	started  bool
	stopped  bool

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New 创建引擎，Start 之前不会注册任何热键
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Action == nil {
		opts.Action = func(context.Context, config.Config) {}
	}
	return &Engine{
		holder:  opts.Holder,
		bind:    opts.Bind,
		action:  opts.Action,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Start 注册当前配置里的热键并开始监听
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}
	if e.started {
		return nil
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.started = true

	return e.rebindLocked()
}

// RebindHotkey 注销旧热键并按当前配置重新注册。
// 由 config.Holder 在每次配置提交后调用；Start 之前调用不做任何事。
func (e *Engine) RebindHotkey() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}
	if !e.started {
		return nil
	}
	return e.rebindLocked()
}

func (e *Engine) rebindLocked() error {
	cfg := e.holder.Snapshot()

	combo, err := hotkey.Parse(cfg.Hotkey)
	if err != nil {
		e.recordRebind(err)
		return fmt.Errorf("热键 %q 无效: %w", cfg.Hotkey, err)
	}

	e.releaseLocked()

	if e.bind == nil {
		err = errors.New("no hotkey backend")
	} else {
		var b Binding
		b, err = e.bind(combo)
		if err == nil {
			listenCtx, cancel := context.WithCancel(e.ctx)
			e.binding, e.unlisten, e.combo = b, cancel, combo.String()
			e.wg.Add(1)
			go e.listen(listenCtx, b)
		}
	}
	e.recordRebind(err)
	if err != nil {
		e.logger.Error("❌ 注册全局热键失败", "hotkey", combo.String(), "error", err)
		return fmt.Errorf("注册热键 %s 失败: %w", combo, err)
	}

	e.logger.Info("⌨️ 全局热键已注册", "hotkey", e.combo, "delay", cfg.Delay)
	if !cfg.BlockHotkey {
		e.logger.Warn("⚠️ 系统热键总会被拦截，block_hotkey=false 不生效", "hotkey", e.combo)
	}
	return nil
}

// releaseLocked 停止监听并注销当前热键
func (e *Engine) releaseLocked() {
	if e.unlisten != nil {
		e.unlisten()
		e.unlisten = nil
	}
	if e.binding != nil {
		if err := e.binding.Unregister(); err != nil {
			e.logger.Warn("⚠️ 注销热键失败", "hotkey", e.combo, "error", err)
		}
		e.binding = nil
		e.combo = ""
	}
}

func (e *Engine) recordRebind(err error) {
	if e.metrics != nil {
		e.metrics.HotkeyRebind.WithLabelValues(metrics.Result(err)).Inc()
	}
}

func (e *Engine) listen(ctx context.Context, b Binding) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-b.Events():
			if !ok {
				return
			}
			e.fire(ctx)
		}
	}
}

func (e *Engine) fire(ctx context.Context) {
	cfg := e.holder.Snapshot()
	e.logger.Debug("热键触发", "hotkey", cfg.Hotkey, "delay", cfg.Delay)

	if cfg.Delay > 0 {
		timer := time.NewTimer(time.Duration(cfg.Delay * float64(time.Second)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	if e.metrics != nil {
		e.metrics.HotkeyFires.Inc()
	}
	e.action(ctx, cfg)
}

// Hotkey 当前已注册的热键，未注册时为空
func (e *Engine) Hotkey() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.combo
}

// Stop 注销热键并等待监听 goroutine 退出，可重复调用
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.stopped = true
		e.releaseLocked()
		if e.cancel != nil {
			e.cancel()
		}
		e.mu.Unlock()

		e.wg.Wait()
		e.logger.Info("⏹️ 自动化引擎已停止")
	})
}
