package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"
	"ContentTrackerAI/pkg/utils"
)

// TypeEntry 按活动类型分组的条目
type TypeEntry struct {
	Time          int    `json:"time"`
	TimeFormatted string `json:"time_formatted"`
	Count         int    `json:"count"`
}

// RecentEntry 报表中的近期活动条目
type RecentEntry struct {
	Time        time.Time           `json:"time"`
	App         string              `json:"app"`
	Type        models.ActivityType `json:"type"`
	Description string              `json:"description"`
}

// DailyReport 单日完整报表
type DailyReport struct {
	Date            string                             `json:"date"`
	GeneratedAt     time.Time                          `json:"generated_at"`
	Summary         *models.DailySummary               `json:"summary"`
	ByActivityType  map[models.ActivityType]*TypeEntry `json:"by_activity_type"`
	TopApps         []models.UsageEntry                `json:"top_apps"`
	TopWebsites     []models.UsageEntry                `json:"top_websites"`
	RecentActivities []RecentEntry                     `json:"recent_activities"`
}

// Generator 报表生成器
type Generator struct {
	store Store
	stats *StatsCalculator
}

// NewGenerator 创建报表生成器
func NewGenerator(store Store) *Generator {
	return &Generator{
		store: store,
		stats: NewStatsCalculator(store),
	}
}

// Daily 生成单日完整报表
func (g *Generator) Daily(date time.Time) (*DailyReport, error) {
	summary, err := g.stats.DailySummary(date)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}

	activities, err := g.store.GetActivitiesForDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	report := &DailyReport{
		Date:           date.Format("2006-01-02"),
		GeneratedAt:    time.Now(),
		Summary:        summary,
		ByActivityType: make(map[models.ActivityType]*TypeEntry),
		TopApps:        summary.TopApps,
		TopWebsites:    summary.TopWebsites,
	}

	for _, a := range activities {
		entry := report.ByActivityType[a.ActivityType]
		if entry == nil {
			entry = &TypeEntry{}
			report.ByActivityType[a.ActivityType] = entry
		}
		entry.Time += a.Duration
		entry.Count++
	}
	for _, entry := range report.ByActivityType {
		entry.TimeFormatted = utils.FormatDuration(entry.Time)
	}

	// 最近 20 条活动
	start := len(activities) - 20
	if start < 0 {
		start = 0
	}
	for _, a := range activities[start:] {
		report.RecentActivities = append(report.RecentActivities, RecentEntry{
			Time:        a.Timestamp,
			App:         a.AppName,
			Type:        a.ActivityType,
			Description: a.ContentDescription,
		})
	}

	return report, nil
}

// ExportJSON 将报表导出为 JSON 文件,filePath 为空时写入默认报表目录
func (g *Generator) ExportJSON(report *DailyReport, filePath string) (string, error) {
	if filePath == "" {
		timestamp := time.Now().Format("20060102_150405")
		filePath = filepath.Join("data", "reports", fmt.Sprintf("report_%s.json", timestamp))
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info("报表已导出: %s", filePath)
	return filePath, nil
}

// activityEmoji 控制台报表使用的活动类型图标
var activityEmoji = map[models.ActivityType]string{
	models.ActivityProductive:    "💻",
	models.ActivityEducational:   "📖",
	models.ActivityEntertainment: "🎬",
	models.ActivitySocialMedia:   "📱",
	models.ActivityGaming:        "🎮",
	models.ActivityShopping:      "🛒",
	models.ActivityNews:          "📰",
	models.ActivityAdult:         "🔞",
	models.ActivityNeutral:       "⚪",
	models.ActivityIdle:          "💤",
}

// PrintText 将报表格式化输出到控制台
func (g *Generator) PrintText(report *DailyReport) {
	fmt.Printf("\n📊 Activity Report for %s\n", report.Date)
	fmt.Println(strings.Repeat("=", 50))

	if report.Summary == nil || report.Summary.TotalSessions == 0 {
		fmt.Println("  No data available for this date.")
		return
	}

	fmt.Printf("\n⏱️  Total Tracked Time: %s\n", utils.FormatDuration(report.Summary.TotalTrackedTime))
	fmt.Printf("📈 Productivity Score: %.1f/100\n", report.Summary.ProductivityScore)
	fmt.Printf("🔢 Total Sessions: %d\n", report.Summary.TotalSessions)
	if report.Summary.NSFWDetections > 0 {
		fmt.Printf("🔞 NSFW Detections: %d\n", report.Summary.NSFWDetections)
	}

	if len(report.ByActivityType) > 0 {
		fmt.Println("\n📂 Time by Activity Type:")
		fmt.Println(strings.Repeat("-", 40))

		type typeRow struct {
			activityType models.ActivityType
			entry        *TypeEntry
		}
		rows := make([]typeRow, 0, len(report.ByActivityType))
		for t, e := range report.ByActivityType {
			rows = append(rows, typeRow{t, e})
		}
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].entry.Time > rows[j].entry.Time
		})

		total := report.Summary.TotalTrackedTime
		if total == 0 {
			total = 1
		}
		for _, row := range rows {
			emoji := activityEmoji[row.activityType]
			if emoji == "" {
				emoji = "❓"
			}
			pct := float64(row.entry.Time) / float64(total) * 100
			filled := int(pct / 5)
			if filled > 20 {
				filled = 20
			}
			bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
			fmt.Printf("  %s %-12s %10s %s %.1f%%\n",
				emoji, row.activityType, row.entry.TimeFormatted, bar, pct)
		}
	}

	if len(report.TopApps) > 0 {
		fmt.Println("\n🏆 Top Applications:")
		fmt.Println(strings.Repeat("-", 40))
		for i, app := range report.TopApps {
			if i >= 5 {
				break
			}
			fmt.Printf("  %d. %-30s %s\n", i+1, app.Name, utils.FormatDuration(app.TotalTime))
		}
	}

	if len(report.TopWebsites) > 0 {
		fmt.Println("\n🌐 Top Websites:")
		fmt.Println(strings.Repeat("-", 40))
		for i, site := range report.TopWebsites {
			if i >= 5 {
				break
			}
			fmt.Printf("  %d. %-30s %s\n", i+1, site.Name, utils.FormatDuration(site.TotalTime))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 50) + "\n")
}
