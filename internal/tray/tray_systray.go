//go:build !stub

package tray

import (
	"context"
	"sync"

	"github.com/getlantern/systray"
)

const available = true

type systrayHandle struct {
	id     string
	opts   Options
	quitCh chan struct{}
	once   sync.Once
}

func (h *systrayHandle) ID() string {
	return h.id
}

func (h *systrayHandle) Stop() {
	h.once.Do(func() {
		close(h.quitCh)
		systray.Quit()
	})
}

func start(ctx context.Context, id string, opts Options) (Handle, error) {
	h := &systrayHandle{
		id:     id,
		opts:   opts,
		quitCh: make(chan struct{}),
	}

	// systray.Run 会阻塞，在单独的 goroutine 中运行
	go systray.Run(h.onReady, func() {})

	// 外层 ctx 结束时随之退出
	go func() {
		select {
		case <-ctx.Done():
			h.Stop()
		case <-h.quitCh:
		}
	}()

	return h, nil
}

func (h *systrayHandle) onReady() {
	systray.SetIcon(h.opts.Icon)
	if h.opts.Title != "" {
		systray.SetTitle(h.opts.Title)
	}
	systray.SetTooltip(h.opts.Tooltip)

	mShow := systray.AddMenuItem("显示", "显示主窗口")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("退出", "退出程序")

	go func() {
		for {
			select {
			case <-h.quitCh:
				return
			case <-mShow.ClickedCh:
				if h.opts.OnShow != nil {
					h.opts.OnShow()
				}
			case <-mQuit.ClickedCh:
				if h.opts.OnQuit != nil {
					h.opts.OnQuit()
				}
			}
		}
	}()
}
