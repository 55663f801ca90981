package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// TimeLayout 日志页使用的时间格式，例如 2025-01-02 15:04:05,123
const TimeLayout = "2006-01-02 15:04:05,000"

// LogEntry 推送给前端日志页的一条记录
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Line    string `json:"line"` // 已格式化的整行：timestamp [LEVEL] message
}

// ParseLevel 解析配置中的日志级别，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelName 返回大写级别名
func LevelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// FormatRecord 把记录格式化为 "timestamp [LEVEL] message k=v ..."
func FormatRecord(r slog.Record, preset []slog.Attr) LogEntry {
	message := r.Message

	var attrs []string
	for _, a := range preset {
		attrs = append(attrs, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, formatAttr(a))
		return true
	})
	if len(attrs) > 0 {
		message = message + " " + strings.Join(attrs, " ")
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	entry := LogEntry{
		Time:    ts.Format(TimeLayout),
		Level:   LevelName(r.Level),
		Message: message,
	}
	entry.Line = fmt.Sprintf("%s [%s] %s", entry.Time, entry.Level, entry.Message)
	return entry
}

func formatAttr(a slog.Attr) string {
	return fmt.Sprintf("%s=%v", a.Key, a.Value.Resolve())
}

// SimpleHandler 控制台输出
type SimpleHandler struct {
	level slog.Level
	mu    *sync.Mutex
	out   io.Writer
	attrs []slog.Attr
}

// NewSimpleHandler 创建控制台处理器；out 为 nil 时写到 stdout
func NewSimpleHandler(out io.Writer, level slog.Level) *SimpleHandler {
	if out == nil {
		out = os.Stdout
	}
	return &SimpleHandler{level: level, mu: &sync.Mutex{}, out: out}
}

func (h *SimpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *SimpleHandler) Handle(_ context.Context, r slog.Record) error {
	entry := FormatRecord(r, h.attrs)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "[%s] [PID:%d] [%s] %s\n", entry.Time, os.Getpid(), entry.Level, entry.Message)
	return err
}

func (h *SimpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *SimpleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// BroadcastHandler 包装下游处理器，同时把每条记录写入日志历史并交给 EventEmitter
type BroadcastHandler struct {
	next    slog.Handler
	History *History
	Emitter *EventEmitter
	attrs   []slog.Attr
}

// NewBroadcastHandler 创建广播处理器，history 保留最近 capacity 行
func NewBroadcastHandler(next slog.Handler, capacity int, emitter *EventEmitter) *BroadcastHandler {
	if emitter == nil {
		emitter = NewEventEmitter(nil)
	}
	return &BroadcastHandler{
		next:    next,
		History: NewHistory(capacity),
		Emitter: emitter,
	}
}

func (h *BroadcastHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *BroadcastHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := FormatRecord(r, h.attrs)
	h.History.Append(entry)
	h.Emitter.Emit(entry)
	return h.next.Handle(ctx, r)
}

func (h *BroadcastHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BroadcastHandler{
		next:    h.next.WithAttrs(attrs),
		History: h.History,
		Emitter: h.Emitter,
		attrs:   append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *BroadcastHandler) WithGroup(name string) slog.Handler {
	return &BroadcastHandler{
		next:    h.next.WithGroup(name),
		History: h.History,
		Emitter: h.Emitter,
		attrs:   h.attrs,
	}
}

// Setup 按配置创建 logger，返回广播处理器供日志页使用
func Setup(level string, historyLines int, out io.Writer, emitter *EventEmitter) (*slog.Logger, *BroadcastHandler) {
	simple := NewSimpleHandler(out, ParseLevel(level))
	broadcast := NewBroadcastHandler(simple, historyLines, emitter)
	return slog.New(broadcast), broadcast
}
