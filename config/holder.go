package config

import (
	"fmt"
	"sync"
)

// Rebinder 在配置变化后重新注册全局热键（由自动化引擎实现）
type Rebinder interface {
	RebindHotkey() error
}

// Holder 进程内唯一的配置句柄，启动时创建，UI 控制器与自动化引擎共用。
// 所有修改都经过 Apply/Replace，修改提交后立即触发一次热键重新注册。
type Holder struct {
	// applyMu 串行化修改流程（提交 + 重新注册 + 回滚）
	applyMu sync.Mutex

	mu        sync.RWMutex
	cfg       Config
	rebinder  Rebinder
	callbacks []func(Config)
}

// NewHolder 创建配置句柄
func NewHolder(cfg *Config) *Holder {
	h := &Holder{}
	if cfg != nil {
		h.cfg = *cfg
	}
	return h
}

// Snapshot 返回当前配置的副本（线程安全）
func (h *Holder) Snapshot() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// SetRebinder 绑定自动化引擎
func (h *Holder) SetRebinder(r Rebinder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rebinder = r
}

// OnChange 注册配置提交成功后的回调
func (h *Holder) OnChange(fn func(Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, fn)
}

// Apply 读取表单并提交，随后重新注册热键。
// 表单无效时不修改任何字段；热键注册失败时恢复到之前的配置。
func (h *Holder) Apply(form Form) (Config, error) {
	h.applyMu.Lock()
	defer h.applyMu.Unlock()

	next, err := form.Parse(h.Snapshot())
	if err != nil {
		return h.Snapshot(), err
	}
	return h.commit(next)
}

// Replace 用一份完整配置替换当前配置（配置文件热重载时使用）
func (h *Holder) Replace(cfg Config) (Config, error) {
	h.applyMu.Lock()
	defer h.applyMu.Unlock()

	if err := cfg.validate(); err != nil {
		return h.Snapshot(), fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.normalize()
	return h.commit(cfg)
}

func (h *Holder) commit(next Config) (Config, error) {
	h.mu.Lock()
	prev := h.cfg
	h.cfg = next
	rebinder := h.rebinder
	h.mu.Unlock()

	if rebinder != nil {
		if err := rebinder.RebindHotkey(); err != nil {
			h.mu.Lock()
			h.cfg = prev
			h.mu.Unlock()

			if rbErr := rebinder.RebindHotkey(); rbErr != nil {
				return prev, fmt.Errorf("重新注册热键失败: %w (恢复原热键 %q 也失败: %v)", err, prev.Hotkey, rbErr)
			}
			return prev, fmt.Errorf("重新注册热键失败: %w", err)
		}
	}

	h.mu.RLock()
	callbacks := make([]func(Config), len(h.callbacks))
	copy(callbacks, h.callbacks)
	h.mu.RUnlock()

	for _, cb := range callbacks {
		cb(next)
	}
	return next, nil
}
