package daemon

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"ContentTrackerAI/internal/config"
	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"

	"github.com/google/uuid"
)

// WindowProbe 前台窗口探测
type WindowProbe interface {
	ActiveWindow(ctx context.Context) (*models.WindowSnapshot, error)
}

// ScreenProbe 屏幕截取
type ScreenProbe interface {
	Capture() (*models.ScreenCapture, error)
}

// IdleProbe 用户空闲时长探测
type IdleProbe interface {
	IdleTime(ctx context.Context) (time.Duration, error)
}

// Classifier 内容分类
type Classifier interface {
	Classify(ctx context.Context, screenshot image.Image, window *models.WindowSnapshot) *models.ClassificationResult
}

// Sink 活动记录落库
type Sink interface {
	InsertActivity(a *models.Activity) error
	UpdateDailyStats(date time.Time) error
	UpdateAppUsage(date time.Time, appName string, seconds int) error
	UpdateWebsiteUsage(date time.Time, website string, seconds int) error
}

// Notifier 活动通知回调,可为 nil
type Notifier interface {
	ActivityRecorded(a *models.Activity)
}

// captureItem 采样队列元素
type captureItem struct {
	window    *models.WindowSnapshot
	capture   *models.ScreenCapture
	timestamp time.Time
}

// Daemon 采集守护进程
//
// 主循环按配置间隔采样前台窗口并截屏,采样结果经有界队列
// 移交给分析协程;队列满时丢弃本次采样,保证主循环不被阻塞。
// 空闲记录不经过队列,直接落库。
type Daemon struct {
	runID     string
	configMgr *config.Manager
	windows   WindowProbe
	screens   ScreenProbe
	idle      IdleProbe
	classify  Classifier
	sink      Sink
	notifier  Notifier

	state *State
	queue chan *captureItem

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// New 创建守护进程
func New(configMgr *config.Manager, windows WindowProbe, screens ScreenProbe,
	idle IdleProbe, classify Classifier, sink Sink) *Daemon {

	capacity := configMgr.GetMonitoring().QueueCapacity
	if capacity <= 0 {
		capacity = 100
	}

	return &Daemon{
		runID:     uuid.New().String(),
		configMgr: configMgr,
		windows:   windows,
		screens:   screens,
		idle:      idle,
		classify:  classify,
		sink:      sink,
		state:     NewState(),
		queue:     make(chan *captureItem, capacity),
	}
}

// SetNotifier 设置活动通知回调
func (d *Daemon) SetNotifier(n Notifier) {
	d.notifier = n
}

// RunID 本次运行的唯一标识
func (d *Daemon) RunID() string {
	return d.runID
}

// Start 启动守护进程(非阻塞)
func (d *Daemon) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.IsRunning() {
		logger.Warn("守护进程已在运行中")
		return fmt.Errorf("daemon already running")
	}

	// 每次启动使用全新的运行状态和队列,不保留上一轮的计数和积压
	capacity := d.configMgr.GetMonitoring().QueueCapacity
	if capacity <= 0 {
		capacity = 100
	}
	d.state = NewState()
	d.queue = make(chan *captureItem, capacity)

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.state.setRunning(true)

	d.wg.Add(2)
	go d.mainLoop()
	go d.analysisWorker()

	logger.Info("守护进程已启动 (run_id=%s, 间隔=%d秒)",
		d.runID, d.configMgr.GetMonitoring().Interval)
	return nil
}

// Stop 优雅停止守护进程
// 等待主循环和分析协程退出,最多 5 秒;退出前更新当日统计。
// 未运行时直接返回,重复停止为空操作
func (d *Daemon) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.state.IsRunning() {
		return nil
	}

	logger.Info("正在停止守护进程...")
	d.state.setRunning(false)
	d.cancel()

	// 有界等待协程退出
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("等待协程退出超时")
	}

	// 停止前更新当日统计
	if err := d.sink.UpdateDailyStats(time.Now()); err != nil {
		logger.Error("更新每日统计失败: %v", err)
	}

	captures, analyses, errors := d.state.Counters()
	status := d.state.Snapshot(d.runID, len(d.queue))
	logger.Info("守护进程已停止. 运行时长: %s, 采样: %d, 分析: %d, 错误: %d",
		status.Uptime, captures, analyses, errors)
	return nil
}

// Pause 暂停采样(主循环继续运行但跳过采样周期)
func (d *Daemon) Pause() {
	d.state.SetPaused(true)
	logger.Info("采样已暂停")
}

// Resume 恢复采样
func (d *Daemon) Resume() {
	d.state.SetPaused(false)
	logger.Info("采样已恢复")
}

// IsRunning 是否运行中
func (d *Daemon) IsRunning() bool {
	return d.state.IsRunning()
}

// IsPaused 是否已暂停
func (d *Daemon) IsPaused() bool {
	return d.state.IsPaused()
}

// Status 获取状态快照
func (d *Daemon) Status() *models.DaemonStatus {
	return d.state.Snapshot(d.runID, len(d.queue))
}

// mainLoop 主采样循环
func (d *Daemon) mainLoop() {
	defer d.wg.Done()

	interval := time.Duration(d.configMgr.GetMonitoring().Interval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("主循环已启动,间隔: %s", interval)

	for {
		select {
		case <-d.ctx.Done():
			logger.Info("主循环已停止")
			return
		case <-ticker.C:
			if d.state.IsPaused() {
				continue
			}
			if err := d.captureCycle(); err != nil {
				d.state.recordError()
				logger.Error("采样周期出错: %v", err)
			}
		}
	}
}

// captureCycle 执行一个采样周期
// 顺序: 空闲检查 -> 窗口探测 -> 隐私排除 -> 窗口未变化跳过 -> 截屏 -> 入队
func (d *Daemon) captureCycle() error {
	start := time.Now()
	monitoring := d.configMgr.GetMonitoring()

	// 空闲检查: 空闲记录直接落库,不经过队列
	idleTime, err := d.idle.IdleTime(d.ctx)
	if err != nil {
		logger.Debug("空闲检测失败: %v", err)
	} else if idleTime >= time.Duration(monitoring.IdleThreshold)*time.Second {
		return d.recordIdleActivity()
	}

	// 前台窗口,探测失败只跳过本周期,不计入错误
	window, err := d.windows.ActiveWindow(d.ctx)
	if err != nil {
		logger.Debug("窗口探测失败,跳过本次采样: %v", err)
		return nil
	}
	if window == nil {
		logger.Debug("未检测到前台窗口")
		return nil
	}

	// 隐私排除: 命中排除规则的窗口不采样不记录
	if d.shouldExclude(window) {
		logger.Debug("窗口已排除: %s", window.AppName)
		return nil
	}

	// 窗口未变化时跳过本次采样
	if d.configMgr.GetDetection().SkipUnchanged && window.SameWindow(d.state.LastWindow()) {
		logger.Debug("窗口未变化,跳过采样")
		return nil
	}

	// 截屏,失败同样只跳过本周期
	capture, err := d.screens.Capture()
	if err != nil {
		logger.Debug("截屏失败,跳过本次采样: %v", err)
		return nil
	}

	d.state.recordCapture(window)

	// 非阻塞入队,队列满时丢弃
	item := &captureItem{
		window:    window,
		capture:   capture,
		timestamp: time.Now(),
	}
	select {
	case d.queue <- item:
	default:
		logger.Warn("分析队列已满,丢弃本次采样")
	}

	logger.Debug("采样周期完成,耗时: %s", time.Since(start))
	return nil
}

// shouldExclude 检查窗口是否命中隐私排除规则
func (d *Daemon) shouldExclude(window *models.WindowSnapshot) bool {
	if d.configMgr.IsAppExcluded(window.AppName) {
		return true
	}
	if d.configMgr.IsAppExcluded(window.ProcessName) {
		return true
	}
	return d.configMgr.IsTitleExcluded(window.WindowTitle)
}

// recordIdleActivity 记录空闲活动
func (d *Daemon) recordIdleActivity() error {
	activity := &models.Activity{
		Timestamp:          time.Now(),
		AppName:            "System",
		WindowTitle:        "Idle",
		ContentType:        models.ContentIdle,
		ActivityType:       models.ActivityIdle,
		ContentDescription: "User is idle",
		DetectionMethod:    models.MethodRules,
		IsIdle:             true,
		Duration:           d.configMgr.GetMonitoring().Interval,
	}

	if err := d.sink.InsertActivity(activity); err != nil {
		return fmt.Errorf("failed to record idle activity: %w", err)
	}
	logger.Debug("已记录空闲活动")
	return nil
}
