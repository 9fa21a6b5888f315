package scheduler

import (
	"fmt"
	"sync"
	"time"

	"ContentTrackerAI/internal/config"
	"ContentTrackerAI/internal/report"
	"ContentTrackerAI/internal/storage"
	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"

	"github.com/robfig/cron/v3"
)

// SummaryNotifier 每日总结通知接口,避免依赖具体通知器
type SummaryNotifier interface {
	SendDailySummary(summary *models.DailySummary)
}

// Scheduler 后台任务调度器
// 负责每小时统计聚合、旧数据清理和每日总结通知
type Scheduler struct {
	cron       *cron.Cron
	configMgr  *config.Manager
	storageMgr *storage.Manager
	stats      *report.StatsCalculator
	notifier   SummaryNotifier
	mu         sync.Mutex
	running    bool
}

// NewScheduler 创建任务调度器
func NewScheduler(
	configMgr *config.Manager,
	storageMgr *storage.Manager,
	notifier SummaryNotifier,
) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		configMgr:  configMgr,
		storageMgr: storageMgr,
		stats:      report.NewStatsCalculator(storageMgr),
		notifier:   notifier,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	// 每小时聚合任务（整点过5分钟执行，更稳妥）
	_, err := s.cron.AddFunc("5 * * * *", s.runHourlyAggregation)
	if err != nil {
		return fmt.Errorf("failed to add aggregation job: %w", err)
	}

	// 清理任务（每天凌晨 3 点）
	_, err = s.cron.AddFunc("0 3 * * *", s.runCleanup)
	if err != nil {
		return fmt.Errorf("failed to add cleanup job: %w", err)
	}

	// 每日总结通知（每天 21:00）
	_, err = s.cron.AddFunc("0 21 * * *", s.runDailySummary)
	if err != nil {
		return fmt.Errorf("failed to add daily summary job: %w", err)
	}

	s.cron.Start()
	s.running = true

	fmt.Println("⏰ 任务调度器已启动")
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false
	fmt.Println("⏰ 任务调度器已停止")
}

// IsRunning 检查是否运行中
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runHourlyAggregation 重算当日聚合统计
func (s *Scheduler) runHourlyAggregation() {
	logger.Debug("开始每小时统计聚合...")

	if err := s.storageMgr.UpdateDailyStats(time.Now()); err != nil {
		logger.Error("统计聚合失败: %v", err)
		return
	}
	logger.Debug("统计聚合完成")
}

// runCleanup 清理超过保留期的活动记录和截图
func (s *Scheduler) runCleanup() {
	fmt.Println("🧹 开始清理旧数据...")

	retentionDays := s.configMgr.GetPrivacy().RetentionDays
	deleted, err := s.storageMgr.CleanupOldData(retentionDays)
	if err != nil {
		fmt.Printf("❌ 清理失败: %v\n", err)
		return
	}

	fmt.Printf("✅ 清理完成，删除了 %d 条旧记录\n", deleted)
}

// runDailySummary 生成当日总结并通知
func (s *Scheduler) runDailySummary() {
	if s.notifier == nil {
		return
	}

	summary, err := s.stats.DailySummary(time.Now())
	if err != nil {
		logger.Error("生成每日总结失败: %v", err)
		return
	}
	if summary == nil || summary.TotalSessions == 0 {
		logger.Debug("当日无活动记录,跳过每日总结通知")
		return
	}

	s.notifier.SendDailySummary(summary)
}
