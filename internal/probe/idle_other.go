//go:build !linux && !windows
// +build !linux,!windows

package probe

import (
	"context"
	"time"
)

// IdleProbe 其他平台的占位探测器
type IdleProbe struct{}

// NewIdleProbe 创建空闲探测器
func NewIdleProbe() *IdleProbe {
	return &IdleProbe{}
}

// IdleTime 该平台不支持空闲检测,恒为 0
func (p *IdleProbe) IdleTime(ctx context.Context) (time.Duration, error) {
	return 0, nil
}
