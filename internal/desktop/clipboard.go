package desktop

import (
	"bytes"
	"context"
	"image"
	_ "image/png"
	"log/slog"
	"sync"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/automation"

	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

func initClipboard() error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	return clipboardErr
}

// ClipboardProbe 默认的热键动作：auto_paste_image 打开时读取剪贴板里的图片并记录尺寸。
// 真正的粘贴与发送按键由外部脚本完成。
func ClipboardProbe(logger *slog.Logger) automation.Action {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, cfg config.Config) {
		if !cfg.AutoPasteImage {
			logger.Debug("自动粘贴已关闭，跳过剪贴板")
			return
		}
		if err := initClipboard(); err != nil {
			logger.Warn("⚠️ 剪贴板不可用", "error", err)
			return
		}

		data := clipboard.Read(clipboard.FmtImage)
		if len(data) == 0 {
			logger.Info("📋 剪贴板中没有图片")
			return
		}

		attrs := []any{
			"bytes", len(data),
			"text_box_topleft", cfg.TextBoxTopLeft.String(),
			"image_box_bottomright", cfg.ImageBoxBottomRight.String(),
			"auto_send", cfg.AutoSendImage,
		}
		if img, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			attrs = append(attrs, "width", img.Width, "height", img.Height)
		}
		logger.InfoContext(ctx, "🖼️ 读取到剪贴板图片", attrs...)
	}
}
