package models

import (
	"image"
	"time"
)

// WindowSnapshot 前台窗口快照
// 由窗口探测器在每个采样周期创建，不直接入库
type WindowSnapshot struct {
	WindowID    int64     `json:"window_id"`
	WindowTitle string    `json:"window_title"`
	AppName     string    `json:"app_name"`
	ProcessName string    `json:"process_name"`
	ProcessID   int       `json:"process_id"`
	WMClass     string    `json:"wm_class"`
	IsBrowser   bool      `json:"is_browser"`
	URL         string    `json:"url"`
	Timestamp   time.Time `json:"timestamp"`
}

// SameWindow 判断是否与另一个快照指向同一窗口（按 ID 和标题）
// 用于"窗口未变化则跳过截屏"优化
func (w *WindowSnapshot) SameWindow(other *WindowSnapshot) bool {
	if w == nil || other == nil {
		return false
	}
	return w.WindowID == other.WindowID && w.WindowTitle == other.WindowTitle
}

// ScreenCapture 屏幕截图
// 由调度器创建，入队后所有权移交给分析协程，记录写入后即丢弃
type ScreenCapture struct {
	Image     image.Image
	Timestamp time.Time
}
