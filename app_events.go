// app_events.go - Wails 事件发射
// 将 Go 后端状态变化通知到前端

package main

import (
	"context"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/logging"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// 事件名称常量
const (
	EventLogBatch      = "log:batch"
	EventLogCleared    = "log:cleared"
	EventConfigChanged = "config:changed"
	EventWindowState   = "window:state"
	EventNotification  = "notification"
)

// emitLogBatch 作为 EventEmitter 的 Sink，在唯一的消费 goroutine 中调用
func (a *App) emitLogBatch(ctx context.Context, batch []logging.LogEntry) {
	runtime.EventsEmit(ctx, EventLogBatch, batch)
}

// emitLogCleared 通知日志页清空显示
func (a *App) emitLogCleared() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, EventLogCleared)
}

// emitConfigChanged 配置提交后刷新表单（界面应用或文件热重载）
func (a *App) emitConfigChanged(cfg config.Config) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, EventConfigChanged, config.FormFromConfig(cfg))
}

// emitWindowState 发送窗口状态到前端
func (a *App) emitWindowState() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, EventWindowState, a.GetWindowState())
}

// emitNotification 发送通知到前端
func (a *App) emitNotification(level, title, message string) {
	if a.ctx == nil {
		return
	}

	runtime.EventsEmit(a.ctx, EventNotification, map[string]string{
		"level":   level, // "info", "error"
		"title":   title,
		"message": message,
	})
}
