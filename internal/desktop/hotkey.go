// Package desktop 自动化引擎在真实桌面上的实现：
// 通过 golang.design/x/hotkey 注册系统热键，通过 golang.design/x/clipboard 读取剪贴板图片。
package desktop

import (
	"fmt"
	"sync"

	"anan-sketchbook/internal/automation"
	"anan-sketchbook/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

type binding struct {
	hk     *xhotkey.Hotkey
	events chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Bind 注册系统全局热键，满足 automation.Binder
func Bind(combo hotkey.Combo) (automation.Binding, error) {
	mods, key, err := systemKeys(combo)
	if err != nil {
		return nil, err
	}

	hk := xhotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register %s: %w", combo, err)
	}

	b := &binding{
		hk:     hk,
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go b.forward()
	return b, nil
}

// forward 把 Keydown 事件转到 events；引擎还在处理上一次触发时丢弃
func (b *binding) forward() {
	keydown := b.hk.Keydown()
	for {
		select {
		case <-b.done:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			select {
			case b.events <- struct{}{}:
			default:
			}
		}
	}
}

func (b *binding) Events() <-chan struct{} {
	return b.events
}

func (b *binding) Unregister() error {
	var err error
	b.once.Do(func() {
		close(b.done)
		err = b.hk.Unregister()
	})
	return err
}
