//go:build windows

package singleton

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	kernel32        = syscall.NewLazyDLL("kernel32.dll")
	user32          = syscall.NewLazyDLL("user32.dll")
	procCreateMutex = kernel32.NewProc("CreateMutexW")
	procMessageBox  = user32.NewProc("MessageBoxW")
)

// Lock 持有命名互斥锁句柄
type Lock struct {
	handle syscall.Handle
}

// Close 释放互斥锁
func (l *Lock) Close() error {
	if l.handle != 0 {
		return syscall.CloseHandle(l.handle)
	}
	return nil
}

// createMutex 创建命名互斥锁
// 返回: 互斥锁对象，是否是首次创建
func createMutex(mutexName string) (*Lock, bool, error) {
	mutexNamePtr, err := syscall.UTF16PtrFromString(mutexName)
	if err != nil {
		return nil, false, err
	}

	ret, _, err := procCreateMutex.Call(
		0, // 默认安全属性
		0, // 不初始拥有
		uintptr(unsafe.Pointer(mutexNamePtr)),
	)

	if ret == 0 {
		return nil, false, err
	}

	// ERROR_ALREADY_EXISTS = 183
	isFirst := err != syscall.ERROR_ALREADY_EXISTS

	return &Lock{handle: syscall.Handle(ret)}, isFirst, nil
}

// showMessageBox 显示 Windows 消息框
func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)

	// MB_OK = 0, MB_ICONWARNING = 0x30
	procMessageBox.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		0x30,
	)
}

// Acquire 确保只有一个实例运行
// 返回的锁需要在程序退出时调用 Close
func Acquire(appName string) (*Lock, error) {
	mutexName := fmt.Sprintf("Global\\%s_SingleInstance", appName)

	lock, isFirst, err := createMutex(mutexName)
	if err != nil {
		return nil, fmt.Errorf("创建互斥锁失败: %w", err)
	}

	if !isFirst {
		showMessageBox(
			appName+" - 警告",
			appName+" 已经在运行中！\n\n如需退出程序，请右键托盘图标选择退出。",
		)
		lock.Close()
		return nil, fmt.Errorf("应用已在运行")
	}

	return lock, nil
}
