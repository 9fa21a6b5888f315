package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"ContentTrackerAI/internal/config"
	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"
	"ContentTrackerAI/pkg/utils"
)

// 通知类型
const (
	TypeDistraction  = "distraction"
	TypeNSFW         = "nsfw"
	TypeDailySummary = "daily_summary"
)

// Notifier 桌面通知器
// 通过 notify-send 发送通知;跟踪连续分心时长,超过阈值时提醒
type Notifier struct {
	configMgr *config.Manager

	mu              sync.Mutex
	distractionSecs int
	lastAlert       map[string]time.Time
	available       bool
}

// NewNotifier 创建通知器
func NewNotifier(configMgr *config.Manager) *Notifier {
	_, err := exec.LookPath("notify-send")
	if err != nil {
		logger.Warn("未找到 notify-send,桌面通知不可用")
	}

	return &Notifier{
		configMgr: configMgr,
		lastAlert: make(map[string]time.Time),
		available: err == nil,
	}
}

// Send 发送桌面通知
func (n *Notifier) Send(title, message string) error {
	cfg := n.configMgr.GetNotifications()
	if !cfg.Enabled {
		return nil
	}

	// 免打扰时段不发送
	if cfg.QuietHoursEnabled {
		inQuiet, err := utils.TimeInRange(cfg.QuietHoursStart, cfg.QuietHoursEnd)
		if err == nil && inQuiet {
			logger.Debug("免打扰时段,跳过通知: %s", title)
			return nil
		}
	}

	if !n.available {
		// 开发环境下降级为日志输出
		logger.Info("[NOTIFICATION] %s: %s", title, message)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "notify-send",
		"-a", "ContentTracker",
		"-t", strconv.Itoa(5000),
		title, message)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}

// ActivityRecorded 活动回调,由分析协程在落库后调用
// 累计连续分心时长,达到阈值后发送分心提醒;NSFW 命中立即提醒
func (n *Notifier) ActivityRecorded(a *models.Activity) {
	cfg := n.configMgr.GetNotifications()
	if !cfg.Enabled {
		return
	}

	if cfg.NSFWAlerts && a.IsNSFW {
		n.alertOnce(TypeNSFW, 10*time.Minute, "Content Alert",
			"NSFW content detected in "+a.AppName)
	}

	if !cfg.DistractionAlerts {
		return
	}

	n.mu.Lock()
	if a.IsIdle || a.IsProductive || a.ActivityType == models.ActivityNeutral {
		// 中断分心连击
		n.distractionSecs = 0
		n.mu.Unlock()
		return
	}

	n.distractionSecs += a.Duration

	threshold := cfg.DistractionThreshold
	if threshold <= 0 {
		threshold = 1800
	}

	shouldAlert := n.distractionSecs >= threshold
	elapsed := n.distractionSecs
	if shouldAlert {
		n.distractionSecs = 0
	}
	n.mu.Unlock()

	if shouldAlert {
		n.alertOnce(TypeDistraction, 15*time.Minute, "Time Check",
			fmt.Sprintf("You've been on %s content for %s",
				a.ActivityType, utils.FormatDuration(elapsed)))
	}
}

// SendDailySummary 发送每日总结通知
func (n *Notifier) SendDailySummary(summary *models.DailySummary) {
	if summary == nil {
		return
	}
	message := fmt.Sprintf("Tracked %s today, productivity %.0f/100",
		utils.FormatDuration(summary.TotalTrackedTime), summary.ProductivityScore)
	if err := n.Send("Daily Summary", message); err != nil {
		logger.Warn("发送每日总结通知失败: %v", err)
	}
}

// alertOnce 限频发送,同类型通知在冷却期内只发一次
func (n *Notifier) alertOnce(alertType string, cooldown time.Duration, title, message string) {
	n.mu.Lock()
	last, ok := n.lastAlert[alertType]
	if ok && time.Since(last) < cooldown {
		n.mu.Unlock()
		return
	}
	n.lastAlert[alertType] = time.Now()
	n.mu.Unlock()

	if err := n.Send(title, message); err != nil {
		logger.Warn("发送通知失败: %v", err)
	}
}
