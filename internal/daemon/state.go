package daemon

import (
	"sync"
	"time"

	"ContentTrackerAI/pkg/models"
	"ContentTrackerAI/pkg/utils"
)

// State 守护进程运行状态
// 主循环和分析协程并发更新,读写都走锁
type State struct {
	mu sync.RWMutex

	isRunning        bool
	isPaused         bool
	startTime        time.Time
	lastCaptureTime  time.Time
	lastAnalysisTime time.Time
	lastWindow       *models.WindowSnapshot
	totalCaptures    int64
	totalAnalyses    int64
	errors           int64
}

// NewState 创建状态对象
func NewState() *State {
	return &State{}
}

func (s *State) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isRunning = running
	if running {
		s.startTime = time.Now()
	}
}

// IsRunning 是否运行中
func (s *State) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// SetPaused 设置暂停标志
func (s *State) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPaused = paused
}

// IsPaused 是否已暂停
func (s *State) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPaused
}

func (s *State) recordCapture(window *models.WindowSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalCaptures++
	s.lastCaptureTime = time.Now()
	s.lastWindow = window
}

func (s *State) recordAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalAnalyses++
	s.lastAnalysisTime = time.Now()
}

func (s *State) recordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}

// LastWindow 最近一次采样的窗口快照
func (s *State) LastWindow() *models.WindowSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastWindow
}

// Counters 返回累计计数 (captures, analyses, errors)
func (s *State) Counters() (int64, int64, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalCaptures, s.totalAnalyses, s.errors
}

// Snapshot 生成状态快照
func (s *State) Snapshot(runID string, queueSize int) *models.DaemonStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var uptimeSeconds int64
	if s.isRunning {
		uptimeSeconds = int64(time.Since(s.startTime).Seconds())
	}

	return &models.DaemonStatus{
		RunID:            runID,
		IsRunning:        s.isRunning,
		IsPaused:         s.isPaused,
		Uptime:           utils.FormatDuration(int(uptimeSeconds)),
		UptimeSeconds:    uptimeSeconds,
		TotalCaptures:    s.totalCaptures,
		TotalAnalyses:    s.totalAnalyses,
		Errors:           s.errors,
		LastCaptureTime:  s.lastCaptureTime,
		LastAnalysisTime: s.lastAnalysisTime,
		LastWindow:       s.lastWindow,
		QueueSize:        queueSize,
	}
}
