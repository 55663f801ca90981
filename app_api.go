// app_api.go - 暴露给前端的 API 方法 (Wails Bindings)
// 这些方法会被自动生成为 JavaScript 调用

package main

import (
	"errors"
	"time"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/lifecycle"
	"anan-sketchbook/internal/logging"
)

var errNotReady = errors.New("应用尚未完成初始化")

// ============================================================
// 配置页
// ============================================================

// GetConfigForm 以表单形式返回当前配置
func (a *App) GetConfigForm() (config.Form, error) {
	if a.holder == nil {
		return config.Form{}, errNotReady
	}
	return config.FormFromConfig(a.holder.Snapshot()), nil
}

// GetUISettings 界面字体设置
func (a *App) GetUISettings() (config.UISettings, error) {
	if a.holder == nil {
		return config.UISettings{}, errNotReady
	}
	return a.holder.Snapshot().UI, nil
}

// ApplyConfig “应用配置”按钮。结果由对话框告知用户，返回值供前端决定是否刷新表单。
func (a *App) ApplyConfig(form config.Form) error {
	if a.controller == nil {
		return errNotReady
	}
	return a.controller.ApplyConfig(form)
}

// SaveConfig “保存配置”按钮
func (a *App) SaveConfig() {
	if a.controller != nil {
		a.controller.SaveConfig()
	}
}

// Minimize “折叠”按钮：隐藏窗口到托盘
func (a *App) Minimize() error {
	if a.controller == nil {
		return errNotReady
	}
	return a.controller.Minimize()
}

// ============================================================
// 窗口状态
// ============================================================

// WindowState 窗口状态结构
type WindowState struct {
	State      string `json:"state"`
	TrayActive bool   `json:"tray_active"`
	Hotkey     string `json:"hotkey"`
	Uptime     string `json:"uptime"`
	Version    string `json:"version"`
}

// GetWindowState 获取窗口与热键状态
func (a *App) GetWindowState() WindowState {
	state := WindowState{
		State:   lifecycle.StateVisible.String(),
		Uptime:  time.Since(a.startTime).Round(time.Second).String(),
		Version: Version,
	}
	if a.controller != nil {
		state.State = a.controller.State().String()
		state.TrayActive = a.controller.TrayActive()
	}
	if a.engine != nil {
		state.Hotkey = a.engine.Hotkey()
	}
	return state
}

// ============================================================
// 日志页
// ============================================================

// GetLogs 返回日志历史，前端首次打开日志页时调用
func (a *App) GetLogs() []logging.LogEntry {
	if a.logHandler == nil {
		return nil
	}
	return a.logHandler.History.Entries()
}

// ClearLogs “清空日志”按钮
func (a *App) ClearLogs() {
	if a.logHandler == nil {
		return
	}
	a.logHandler.History.Clear()
	if a.metrics != nil {
		a.metrics.LogClears.Inc()
	}
	a.emitLogCleared()
}
