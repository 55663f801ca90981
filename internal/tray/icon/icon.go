// Package icon 生成托盘默认图标。
package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const iconSize = 64

var (
	iconBackground = color.RGBA{R: 0, G: 120, B: 215, A: 255}
	iconForeground = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	defaultIconOnce sync.Once
	defaultIcon     []byte
)

// Default 生成默认托盘图标：蓝底白框，中间一个 "A"（代表安安）
func Default() []byte {
	defaultIconOnce.Do(func() {
		defaultIcon = encodeIcon(renderIcon())
	})
	return defaultIcon
}

func renderIcon() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			img.Set(x, y, iconBackground)
		}
	}

	// 外框
	for i := 10; i <= 54; i++ {
		for w := 0; w < 2; w++ {
			img.Set(i, 10+w, iconForeground)
			img.Set(i, 53-w, iconForeground)
			img.Set(10+w, i, iconForeground)
			img.Set(53-w, i, iconForeground)
		}
	}

	// "A"：两条斜边加一条横线
	drawLine(img, 32, 16, 18, 48)
	drawLine(img, 32, 16, 46, 48)
	drawLine(img, 24, 36, 40, 36)
	return img
}

// drawLine 粗细 2px 的线段（Bresenham）
func drawLine(img *image.RGBA, x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		img.Set(x0, y0, iconForeground)
		img.Set(x0+1, y0, iconForeground)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
