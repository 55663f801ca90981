//go:build stub

package tray

import (
	"context"
	"errors"
)

const available = false

// ErrUnavailable 当前构建没有托盘后端
var ErrUnavailable = errors.New("tray backend not available")

func start(_ context.Context, _ string, _ Options) (Handle, error) {
	return nil, ErrUnavailable
}
