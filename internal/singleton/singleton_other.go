//go:build !windows

package singleton

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// Lock 持有单实例 PID 文件
type Lock struct {
	path string
}

// Close 移除 PID 文件
func (l *Lock) Close() error {
	if l.path == "" {
		return nil
	}
	return os.Remove(l.path)
}

// Acquire 确保只有一个实例运行
// 在临时目录写入 PID 文件;若已存在且对应进程仍存活则拒绝启动,
// 进程已不存在的残留文件会被覆盖。
// 返回的锁需要在程序退出时调用 Close
func Acquire(appName string) (*Lock, error) {
	pidPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s.pid", strings.ToLower(appName)))

	if data, err := os.ReadFile(pidPath); err == nil {
		pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err == nil && pid > 0 && processAlive(pid) {
			return nil, fmt.Errorf("应用已在运行 (pid=%d)", pid)
		}
	}

	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}

	return &Lock{path: pidPath}, nil
}

// processAlive 检查进程是否存活
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// 信号 0 只做存在性检查
	return process.Signal(syscall.Signal(0)) == nil
}
