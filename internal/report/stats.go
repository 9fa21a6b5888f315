package report

import (
	"fmt"
	"sort"
	"time"

	"ContentTrackerAI/internal/classifier"
	"ContentTrackerAI/pkg/models"
)

// Store 报表所需的存储读取接口,storage.Manager 实现该接口
type Store interface {
	GetDailyStats(date time.Time) (*models.DailySummary, error)
	GetActivitiesForDate(date time.Time) ([]*models.Activity, error)
	GetActivities(start, end time.Time) ([]*models.Activity, error)
	GetTopApps(date time.Time, limit int) ([]models.UsageEntry, error)
	GetTopWebsites(date time.Time, limit int) ([]models.UsageEntry, error)
	GetHourlyBreakdown(date time.Time) ([]models.HourlyEntry, error)
}

// StatsCalculator 统计计算器
type StatsCalculator struct {
	store Store
}

// NewStatsCalculator 创建统计计算器
func NewStatsCalculator(store Store) *StatsCalculator {
	return &StatsCalculator{store: store}
}

// DailySummary 获取单日统计摘要
// 优先读取聚合表缓存,缺失时从活动记录全量计算
func (c *StatsCalculator) DailySummary(date time.Time) (*models.DailySummary, error) {
	cached, err := c.store.GetDailyStats(date)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		c.attachDetails(cached, date)
		return cached, nil
	}

	activities, err := c.store.GetActivitiesForDate(date)
	if err != nil {
		return nil, err
	}

	summary := &models.DailySummary{
		Date:           date.Format("2006-01-02"),
		TimeByActivity: make(map[models.ActivityType]int),
	}

	if len(activities) == 0 {
		return summary, nil
	}

	var lastApp string
	for _, a := range activities {
		summary.TimeByActivity[a.ActivityType] += a.Duration
		if !a.IsIdle {
			summary.TotalTrackedTime += a.Duration
		}
		if a.IsNSFW {
			summary.NSFWDetections++
		}
		if lastApp != "" && a.AppName != lastApp {
			summary.AppSwitches++
		}
		lastApp = a.AppName
	}
	summary.TotalSessions = len(activities)
	summary.ProductivityScore = weightedScore(summary.TimeByActivity, summary.TotalTrackedTime)

	c.attachDetails(summary, date)
	return summary, nil
}

// attachDetails 补充 Top 应用/网站和按小时分布
func (c *StatsCalculator) attachDetails(summary *models.DailySummary, date time.Time) {
	if apps, err := c.store.GetTopApps(date, 10); err == nil {
		summary.TopApps = apps
	}
	if sites, err := c.store.GetTopWebsites(date, 10); err == nil {
		summary.TopWebsites = sites
	}
	if hourly, err := c.store.GetHourlyBreakdown(date); err == nil {
		summary.HourlyBreakdown = hourly
	}
}

// weightedScore 按权重表计算生产力评分并归一化到 0-100
// 全部为生产力活动时 100,全部为负向活动时趋向 0
func weightedScore(timeByType map[models.ActivityType]int, totalTime int) float64 {
	if totalTime == 0 {
		return 0
	}

	var weighted float64
	for activityType, duration := range timeByType {
		if activityType == models.ActivityIdle {
			continue
		}
		weighted += classifier.ProductivityScore(activityType) * float64(duration)
	}

	score := (weighted/float64(totalTime) + 1) * 50
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// WeeklyBreakdown 最近 N 天的活动分布
type WeeklyBreakdown struct {
	PeriodDays  int                                 `json:"period_days"`
	TotalByType map[models.ActivityType]int         `json:"total_by_type"`
	DailyByType map[string]map[models.ActivityType]int `json:"daily_breakdown"`
	TotalTime   int                                 `json:"total_time"`
}

// Weekly 计算最近 N 天的活动分布
func (c *StatsCalculator) Weekly(days int) (*WeeklyBreakdown, error) {
	if days <= 0 {
		days = 7
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	activities, err := c.store.GetActivities(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	breakdown := &WeeklyBreakdown{
		PeriodDays:  days,
		TotalByType: make(map[models.ActivityType]int),
		DailyByType: make(map[string]map[models.ActivityType]int),
	}

	for _, a := range activities {
		breakdown.TotalByType[a.ActivityType] += a.Duration
		breakdown.TotalTime += a.Duration

		day := a.Timestamp.Format("2006-01-02")
		if breakdown.DailyByType[day] == nil {
			breakdown.DailyByType[day] = make(map[models.ActivityType]int)
		}
		breakdown.DailyByType[day][a.ActivityType] += a.Duration
	}

	return breakdown, nil
}

// TopActivity 按描述聚合的活动条目
type TopActivity struct {
	Description  string              `json:"description"`
	TotalTime    int                 `json:"total_time"`
	SessionCount int                 `json:"session_count"`
	ActivityType models.ActivityType `json:"activity_type"`
}

// TopActivities 获取指定日期按时长排序的活动
func (c *StatsCalculator) TopActivities(date time.Time, limit int) ([]TopActivity, error) {
	activities, err := c.store.GetActivitiesForDate(date)
	if err != nil {
		return nil, err
	}

	type agg struct {
		time         int
		count        int
		activityType models.ActivityType
	}
	byDesc := make(map[string]*agg)

	for _, a := range activities {
		key := a.ContentDescription
		if key == "" {
			key = a.AppName
		}
		if key == "" {
			key = "Unknown"
		}
		entry := byDesc[key]
		if entry == nil {
			entry = &agg{}
			byDesc[key] = entry
		}
		entry.time += a.Duration
		entry.count++
		entry.activityType = a.ActivityType
	}

	result := make([]TopActivity, 0, len(byDesc))
	for desc, entry := range byDesc {
		result = append(result, TopActivity{
			Description:  desc,
			TotalTime:    entry.time,
			SessionCount: entry.count,
			ActivityType: entry.activityType,
		})
	}

	// 按时长降序
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalTime > result[j].TotalTime
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
