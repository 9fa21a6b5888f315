//go:build !linux && !windows
// +build !linux,!windows

package probe

import (
	"context"
	"time"

	"ContentTrackerAI/pkg/models"
)

// WindowProbe 其他平台的占位探测器
type WindowProbe struct{}

// NewWindowProbe 创建窗口探测器
func NewWindowProbe() *WindowProbe {
	return &WindowProbe{}
}

// ActiveWindow 该平台不支持窗口探测,返回未知窗口
func (p *WindowProbe) ActiveWindow(ctx context.Context) (*models.WindowSnapshot, error) {
	return &models.WindowSnapshot{
		AppName:   "Unknown",
		Timestamp: time.Now(),
	}, nil
}
