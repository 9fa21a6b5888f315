package models

import "time"

// DaemonStatus 守护进程状态快照
// 由 daemon.Status() 在调用时生成，字段为当时的只读副本
type DaemonStatus struct {
	RunID            string          `json:"run_id"`
	IsRunning        bool            `json:"is_running"`
	IsPaused         bool            `json:"is_paused"`
	Uptime           string          `json:"uptime"`
	UptimeSeconds    int64           `json:"uptime_seconds"`
	TotalCaptures    int64           `json:"total_captures"`
	TotalAnalyses    int64           `json:"total_analyses"`
	Errors           int64           `json:"errors"`
	LastCaptureTime  time.Time       `json:"last_capture_time,omitempty"`
	LastAnalysisTime time.Time       `json:"last_analysis_time,omitempty"`
	LastWindow       *WindowSnapshot `json:"last_window,omitempty"`
	QueueSize        int             `json:"queue_size"`
}

// DailySummary 单日统计摘要
type DailySummary struct {
	Date              string               `json:"date"`
	TotalTrackedTime  int                  `json:"total_tracked_time"` // 秒
	TimeByActivity    map[ActivityType]int `json:"time_by_activity"`
	ProductivityScore float64              `json:"productivity_score"` // 0-100
	TotalSessions     int                  `json:"total_sessions"`
	AppSwitches       int                  `json:"app_switches"`
	NSFWDetections    int                  `json:"nsfw_detections"`
	TopApps           []UsageEntry         `json:"top_apps"`
	TopWebsites       []UsageEntry         `json:"top_websites"`
	HourlyBreakdown   []HourlyEntry        `json:"hourly_breakdown"`
}

// UsageEntry 应用/网站使用统计条目
type UsageEntry struct {
	Name      string `json:"name"`
	TotalTime int    `json:"total_time"` // 秒
	Sessions  int    `json:"sessions"`
}

// HourlyEntry 按小时统计条目
type HourlyEntry struct {
	Hour           int `json:"hour"`
	TotalTime      int `json:"total_time"`      // 秒
	ProductiveTime int `json:"productive_time"` // 秒
}
