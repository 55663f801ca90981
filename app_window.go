// app_window.go - 控制器所需的窗口、对话框与托盘适配
// 把 lifecycle 的接口落到 Wails runtime 和 internal/tray 上

package main

import (
	"context"
	"sync/atomic"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/lifecycle"
	"anan-sketchbook/internal/tray"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// wailsWindow 实现 lifecycle.Window
type wailsWindow struct {
	ctx      context.Context
	quitting atomic.Bool
}

func newWailsWindow(ctx context.Context) *wailsWindow {
	return &wailsWindow{ctx: ctx}
}

func (w *wailsWindow) Hide() {
	runtime.WindowHide(w.ctx)
}

func (w *wailsWindow) Show() {
	runtime.WindowUnminimise(w.ctx)
	runtime.WindowShow(w.ctx)
}

// Raise 切一次置顶把窗口带到最前
func (w *wailsWindow) Raise() {
	runtime.WindowSetAlwaysOnTop(w.ctx, true)
	runtime.WindowSetAlwaysOnTop(w.ctx, false)
}

// Iconify 先显示再最小化，窗口才会留在任务栏
func (w *wailsWindow) Iconify() {
	runtime.WindowShow(w.ctx)
	runtime.WindowMinimise(w.ctx)
}

func (w *wailsWindow) Destroy() {
	if !w.quitting.CompareAndSwap(false, true) {
		return
	}
	// Quit 会同步回调 OnBeforeClose，不能在调用方的锁内等待
	go runtime.Quit(w.ctx)
}

// markQuitting Wails 已在关闭流程中，之后的 Destroy 不再调用 Quit
func (w *wailsWindow) markQuitting() {
	w.quitting.Store(true)
}

// wailsPrompter 实现 lifecycle.Prompter
type wailsPrompter struct {
	ctx context.Context
}

func newWailsPrompter(ctx context.Context) *wailsPrompter {
	return &wailsPrompter{ctx: ctx}
}

func (p *wailsPrompter) AskClose() lifecycle.Command {
	result, err := runtime.MessageDialog(p.ctx, runtime.MessageDialogOptions{
		Type:          runtime.QuestionDialog,
		Title:         "确认操作",
		Message:       "确定要退出安安的素描本聊天框吗？\n隐藏：最小化到托盘，热键继续可用",
		Buttons:       []string{lifecycle.ButtonHide, lifecycle.ButtonClose, lifecycle.ButtonCancel},
		DefaultButton: lifecycle.ButtonHide,
		CancelButton:  lifecycle.ButtonCancel,
	})
	if err != nil {
		return lifecycle.CommandCancel
	}
	return lifecycle.CloseChoice(result)
}

func (p *wailsPrompter) Info(title, message string) {
	_, _ = runtime.MessageDialog(p.ctx, runtime.MessageDialogOptions{
		Type:    runtime.InfoDialog,
		Title:   title,
		Message: message,
	})
}

func (p *wailsPrompter) Error(title, message string) {
	_, _ = runtime.MessageDialog(p.ctx, runtime.MessageDialogOptions{
		Type:    runtime.ErrorDialog,
		Title:   title,
		Message: message,
	})
}

// trayBackend 把 tray.Backend 适配成 lifecycle.TrayBackend，托盘提示文字取自当前配置
type trayBackend struct {
	backend tray.Backend
	holder  *config.Holder
}

// newTrayBackend 配置 tray.disabled 为 true 时托盘不可用，最小化退回到系统最小化
func newTrayBackend(holder *config.Holder) lifecycle.TrayBackend {
	return lifecycle.GateTray(&trayBackend{holder: holder}, func() bool {
		return holder.Snapshot().Tray.Disabled
	})
}

func (t *trayBackend) Available() bool {
	return t.backend.Available()
}

func (t *trayBackend) Start(ctx context.Context, menu lifecycle.TrayMenu) (lifecycle.TrayHandle, error) {
	cfg := t.holder.Snapshot()
	return t.backend.Start(ctx, tray.Options{
		Title:   appTitle,
		Tooltip: cfg.Tray.Tooltip,
		OnShow:  menu.OnShow,
		OnQuit:  menu.OnQuit,
	})
}
