package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"anan-sketchbook/config"
)

// ErrExited 控制器已退出，之后的操作全部无效
var ErrExited = errors.New("lifecycle: controller has exited")

// State 主窗口状态
type State int

const (
	StateVisible State = iota
	StateMinimized
	StateExited
)

func (s State) String() string {
	switch s {
	case StateVisible:
		return "visible"
	case StateMinimized:
		return "minimized"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Command 交给 Dispatch 处理的命令。
// 前三个对应关闭确认对话框的三个按钮，CommandRestore 来自托盘“显示”菜单。
type Command int

const (
	CommandHide Command = iota
	CommandClose
	CommandCancel
	CommandRestore
)

func (c Command) String() string {
	switch c {
	case CommandHide:
		return "hide"
	case CommandClose:
		return "close"
	case CommandCancel:
		return "cancel"
	case CommandRestore:
		return "restore"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// Window 主窗口句柄
type Window interface {
	Hide()
	Show()
	Raise()
	// Iconify 没有托盘时退回到系统最小化
	Iconify()
	// Destroy 关闭窗口并结束 UI 事件循环
	Destroy()
}

// Prompter 模态对话框；调用期间阻塞，直到用户做出选择
type Prompter interface {
	AskClose() Command
	Info(title, message string)
	Error(title, message string)
}

// Engine 外部自动化引擎（热键监听与粘贴/发送动作）
type Engine interface {
	Stop()
}

// ConfigApplier 配置句柄的唯一写入口，提交后负责重新注册热键
type ConfigApplier interface {
	Apply(form config.Form) (config.Config, error)
}

// TrayHandle 运行中的托盘图标
type TrayHandle interface {
	ID() string
	Stop()
}

// TrayMenu 托盘菜单回调；在托盘 goroutine 中执行
type TrayMenu struct {
	OnShow func()
	OnQuit func()
}

// TrayBackend 托盘后端；Available 为 false 时最小化退回到 Window.Iconify
type TrayBackend interface {
	Available() bool
	Start(ctx context.Context, menu TrayMenu) (TrayHandle, error)
}

// 关闭确认对话框的按钮文字
const (
	ButtonHide   = "隐藏"
	ButtonClose  = "关闭"
	ButtonCancel = "取消"
)

// CloseChoice 把对话框返回的按钮文字换成命令。
// Windows 的消息框忽略自定义按钮，返回 Yes/No/Cancel，按顺序对应隐藏/关闭/取消。
// 无法识别的结果（包括直接关掉对话框）按取消处理。
func CloseChoice(button string) Command {
	switch button {
	case ButtonHide, "Yes":
		return CommandHide
	case ButtonClose, "No":
		return CommandClose
	default:
		return CommandCancel
	}
}

// GateTray 在 disabled 返回 true 时把 backend 视为不可用（配置 tray.disabled）。
// disabled 每次最小化时重新求值，配置热更新后立即生效。
func GateTray(backend TrayBackend, disabled func() bool) TrayBackend {
	return gatedTray{backend: backend, disabled: disabled}
}

type gatedTray struct {
	backend  TrayBackend
	disabled func() bool
}

func (g gatedTray) Available() bool {
	if g.backend == nil || !g.backend.Available() {
		return false
	}
	return g.disabled == nil || !g.disabled()
}

func (g gatedTray) Start(ctx context.Context, menu TrayMenu) (TrayHandle, error) {
	return g.backend.Start(ctx, menu)
}
