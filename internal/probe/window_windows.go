//go:build windows
// +build windows

package probe

import (
	"context"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unsafe"

	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"
)

var (
	user32   = syscall.NewLazyDLL("user32.dll")
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procGetForegroundWindow       = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW            = user32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessId  = user32.NewProc("GetWindowThreadProcessId")
	procOpenProcess               = kernel32.NewProc("OpenProcess")
	procCloseHandle               = kernel32.NewProc("CloseHandle")
	procQueryFullProcessImageName = kernel32.NewProc("QueryFullProcessImageNameW")
)

const processQueryLimitedInformation = 0x1000

// WindowProbe Windows 前台窗口探测器
type WindowProbe struct{}

// NewWindowProbe 创建窗口探测器
func NewWindowProbe() *WindowProbe {
	logger.Info("窗口探测器初始化完成: win32")
	return &WindowProbe{}
}

// ActiveWindow 获取当前前台窗口快照
func (p *WindowProbe) ActiveWindow(ctx context.Context) (*models.WindowSnapshot, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		// 锁屏等状态下没有前台窗口
		return &models.WindowSnapshot{AppName: "Unknown", Timestamp: time.Now()}, nil
	}

	snap := &models.WindowSnapshot{
		WindowID:  int64(hwnd),
		Timestamp: time.Now(),
	}

	// 窗口标题
	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n > 0 {
		snap.WindowTitle = syscall.UTF16ToString(buf[:n])
	}

	// 进程 ID 和进程名
	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	snap.ProcessID = int(pid)
	snap.ProcessName = processNameFromPID(pid)

	snap.AppName = strings.TrimSuffix(snap.ProcessName, ".exe")
	if snap.AppName == "" {
		snap.AppName = extractAppFromTitle(snap.WindowTitle)
	}

	snap.IsBrowser = isBrowserApp(snap.AppName)
	if snap.IsBrowser {
		snap.URL = extractURLFromTitle(snap.WindowTitle)
	}

	return snap, nil
}

// processNameFromPID 查询进程可执行文件名
func processNameFromPID(pid uint32) string {
	if pid == 0 {
		return ""
	}

	handle, _, _ := procOpenProcess.Call(processQueryLimitedInformation, 0, uintptr(pid))
	if handle == 0 {
		return ""
	}
	defer procCloseHandle.Call(handle)

	buf := make([]uint16, syscall.MAX_PATH)
	size := uint32(len(buf))
	ret, _, _ := procQueryFullProcessImageName.Call(
		handle,
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if ret == 0 {
		return ""
	}

	fullPath := syscall.UTF16ToString(buf[:size])
	return filepath.Base(fullPath)
}
