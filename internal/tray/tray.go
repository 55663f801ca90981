// Package tray 最小化时显示的系统托盘图标。
//
// 默认使用 getlantern/systray；以 -tags stub 构建时没有托盘后端，
// Available 返回 false，调用方应退回到系统最小化。
package tray

import (
	"context"

	"anan-sketchbook/internal/tray/icon"

	"github.com/google/uuid"
)

// Handle 一个运行中的托盘图标
type Handle interface {
	// ID 本次托盘实例的标识，用于日志
	ID() string
	// Stop 停止托盘事件循环并移除图标；可重复调用
	Stop()
}

// Options 托盘启动参数。
type Options struct {
	// Icon 托盘图标内容（Windows 为 .ico 字节，其它平台为 PNG）。
	Icon []byte

	// Title 托盘标题（macOS 菜单栏显示）。
	Title string

	// Tooltip 托盘悬浮提示文本。
	Tooltip string

	// OnShow 用户点击“显示”菜单。在托盘 goroutine 中调用，不得直接操作窗口。
	OnShow func()

	// OnQuit 用户点击“退出”菜单。在托盘 goroutine 中调用，不得直接操作窗口。
	OnQuit func()
}

// Backend 托盘后端
type Backend struct{}

// Available 当前构建是否带有托盘后端
func (Backend) Available() bool {
	return available
}

// Start 启动系统托盘（平台相关实现）。
func (Backend) Start(ctx context.Context, opts Options) (Handle, error) {
	if len(opts.Icon) == 0 {
		opts.Icon = icon.Default()
	}
	return start(ctx, uuid.NewString(), opts)
}
