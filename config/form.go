package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Form 设置页表单的原始值。
// 数值字段保持字符串形式，强制转换错误在 Parse 中统一报告。
type Form struct {
	Hotkey         string `json:"hotkey"`
	Delay          string `json:"delay"`
	TopLeftX       string `json:"topleft_x"`
	TopLeftY       string `json:"topleft_y"`
	BottomRightX   string `json:"bottomright_x"`
	BottomRightY   string `json:"bottomright_y"`
	AutoPasteImage bool   `json:"auto_paste_image"`
	AutoSendImage  bool   `json:"auto_send_image"`
	BlockHotkey    bool   `json:"block_hotkey"`
}

// FormFromConfig 用当前配置填充表单
func FormFromConfig(cfg Config) Form {
	return Form{
		Hotkey:         cfg.Hotkey,
		Delay:          strconv.FormatFloat(cfg.Delay, 'g', -1, 64),
		TopLeftX:       strconv.Itoa(cfg.TextBoxTopLeft.X),
		TopLeftY:       strconv.Itoa(cfg.TextBoxTopLeft.Y),
		BottomRightX:   strconv.Itoa(cfg.ImageBoxBottomRight.X),
		BottomRightY:   strconv.Itoa(cfg.ImageBoxBottomRight.Y),
		AutoPasteImage: cfg.AutoPasteImage,
		AutoSendImage:  cfg.AutoSendImage,
		BlockHotkey:    cfg.BlockHotkey,
	}
}

// Parse 把表单套用到 base 上生成新配置。
// 任一字段无效时返回所有字段的错误，base 不会被修改。
func (f Form) Parse(base Config) (Config, error) {
	next := base
	var errs []error

	next.Hotkey = strings.TrimSpace(f.Hotkey)

	if v, err := strconv.ParseFloat(strings.TrimSpace(f.Delay), 64); err != nil {
		errs = append(errs, fieldError("操作延迟(秒)", f.Delay, err))
	} else {
		next.Delay = v
	}

	next.TextBoxTopLeft.X = parseIntField(&errs, "左上角X", f.TopLeftX)
	next.TextBoxTopLeft.Y = parseIntField(&errs, "左上角Y", f.TopLeftY)
	next.ImageBoxBottomRight.X = parseIntField(&errs, "右下角X", f.BottomRightX)
	next.ImageBoxBottomRight.Y = parseIntField(&errs, "右下角Y", f.BottomRightY)

	next.AutoPasteImage = f.AutoPasteImage
	next.AutoSendImage = f.AutoSendImage
	next.BlockHotkey = f.BlockHotkey

	if len(errs) > 0 {
		return base, errors.Join(errs...)
	}
	if err := next.validate(); err != nil {
		return base, err
	}
	next.normalize()
	return next, nil
}

func parseIntField(errs *[]error, label, raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, fieldError(label, raw, err))
		return 0
	}
	return v
}

func fieldError(label, raw string, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	return fmt.Errorf("%s: 无效的数值 %q (%w)", label, raw, err)
}
