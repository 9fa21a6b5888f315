//go:build windows
// +build windows

package probe

import (
	"context"
	"time"
	"unsafe"
)

var (
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

// IdleProbe Windows 空闲时间探测器,基于 GetLastInputInfo
type IdleProbe struct{}

// NewIdleProbe 创建空闲探测器
func NewIdleProbe() *IdleProbe {
	return &IdleProbe{}
}

// IdleTime 返回用户空闲时长
func (p *IdleProbe) IdleTime(ctx context.Context) (time.Duration, error) {
	var info lastInputInfo
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, _ := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0, nil
	}

	tick, _, _ := procGetTickCount.Call()
	elapsed := uint32(tick) - info.dwTime
	return time.Duration(elapsed) * time.Millisecond, nil
}
