//go:build linux
// +build linux

package probe

import (
	"context"
	"os/exec"
	"strconv"
	"time"

	"ContentTrackerAI/pkg/logger"
)

// IdleProbe Linux 空闲时间探测器,基于 xprintidle
type IdleProbe struct {
	available bool
}

// NewIdleProbe 创建空闲探测器
// xprintidle 不可用时 IdleTime 恒为 0(视为始终活跃)
func NewIdleProbe() *IdleProbe {
	_, err := exec.LookPath("xprintidle")
	if err != nil {
		logger.Warn("未找到 xprintidle,空闲检测不可用")
	}
	return &IdleProbe{available: err == nil}
}

// IdleTime 返回用户空闲时长
func (p *IdleProbe) IdleTime(ctx context.Context) (time.Duration, error) {
	if !p.available {
		return 0, nil
	}

	out, err := runCommand(ctx, "xprintidle")
	if err != nil {
		return 0, err
	}

	// xprintidle 输出毫秒
	ms, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
