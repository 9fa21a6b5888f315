package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ContentTrackerAI/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManagerAtPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

// noon 返回当天中午的时间,避免跨日边界
func noon() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
}

func sampleActivity(ts time.Time) *models.Activity {
	return &models.Activity{
		Timestamp:          ts,
		AppName:            "Firefox",
		WindowTitle:        "Example Page",
		ProcessName:        "firefox",
		ProcessID:          1234,
		Website:            "example.com",
		URL:                "https://example.com/page",
		ContentType:        models.ContentBrowser,
		ContentCategory:    "other",
		ContentDescription: "Browsing: Example Page",
		ActivityType:       models.ActivityNeutral,
		DetectionMethod:    models.MethodRules,
		Confidence:         0.5,
		Duration:           30,
	}
}

func TestInsertActivityRoundTrip(t *testing.T) {
	m := newTestManager(t)

	a := sampleActivity(noon())
	a.ActivityType = models.ActivityProductive
	a.IsProductive = true
	a.ProductivityScore = 1.0
	a.ExtractedText = "package main"

	require.NoError(t, m.InsertActivity(a))
	assert.Greater(t, a.ID, int64(0))

	got, err := m.GetLastActivity()
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.AppName, got.AppName)
	assert.Equal(t, a.WindowTitle, got.WindowTitle)
	assert.Equal(t, a.Website, got.Website)
	assert.Equal(t, a.ContentType, got.ContentType)
	assert.Equal(t, a.ActivityType, got.ActivityType)
	assert.Equal(t, a.DetectionMethod, got.DetectionMethod)
	assert.True(t, got.IsProductive)
	assert.InDelta(t, 1.0, got.ProductivityScore, 0.001)
	assert.Equal(t, 30, got.Duration)
	assert.Equal(t, "package main", got.ExtractedText)
	assert.WithinDuration(t, a.Timestamp, got.Timestamp, time.Second)
}

func TestGetLastActivityEmpty(t *testing.T) {
	m := newTestManager(t)

	got, err := m.GetLastActivity()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetActivitiesForDate(t *testing.T) {
	m := newTestManager(t)
	base := noon()

	today := sampleActivity(base)
	yesterday := sampleActivity(base.AddDate(0, 0, -1))
	require.NoError(t, m.InsertActivity(today))
	require.NoError(t, m.InsertActivity(yesterday))

	got, err := m.GetActivitiesForDate(base)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, today.ID, got[0].ID)
}

func TestGetRecentActivitiesOrder(t *testing.T) {
	m := newTestManager(t)
	base := noon()

	for i := 0; i < 3; i++ {
		a := sampleActivity(base.Add(time.Duration(i) * time.Minute))
		a.WindowTitle = string(rune('A' + i))
		require.NoError(t, m.InsertActivity(a))
	}

	got, err := m.GetRecentActivities(2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// 时间倒序
	assert.Equal(t, "C", got[0].WindowTitle)
	assert.Equal(t, "B", got[1].WindowTitle)
}

func TestUpdateDailyStats(t *testing.T) {
	m := newTestManager(t)
	base := noon()

	coding := sampleActivity(base)
	coding.AppName = "VS Code"
	coding.ActivityType = models.ActivityProductive
	coding.Duration = 60

	learning := sampleActivity(base.Add(time.Minute))
	learning.AppName = "VS Code"
	learning.ActivityType = models.ActivityEducational
	learning.Duration = 30

	video := sampleActivity(base.Add(2 * time.Minute))
	video.AppName = "vlc"
	video.ActivityType = models.ActivityEntertainment
	video.Duration = 30
	video.IsNSFW = true

	idle := sampleActivity(base.Add(3 * time.Minute))
	idle.AppName = "System"
	idle.ActivityType = models.ActivityIdle
	idle.IsIdle = true
	idle.Duration = 60

	for _, a := range []*models.Activity{coding, learning, video, idle} {
		require.NoError(t, m.InsertActivity(a))
	}

	require.NoError(t, m.UpdateDailyStats(base))

	summary, err := m.GetDailyStats(base)
	require.NoError(t, err)
	require.NotNil(t, summary)

	// 空闲不计入总时长
	assert.Equal(t, 120, summary.TotalTrackedTime)
	// productive + educational 计入生产力时间: 90/120 = 75%
	assert.InDelta(t, 75.0, summary.ProductivityScore, 0.001)
	assert.Equal(t, 4, summary.TotalSessions)
	assert.Equal(t, 1, summary.NSFWDetections)
	// VS Code -> vlc 一次切换,空闲记录不参与
	assert.Equal(t, 1, summary.AppSwitches)
	assert.Equal(t, 90, summary.TimeByActivity[models.ActivityProductive])
	assert.Equal(t, 30, summary.TimeByActivity[models.ActivityEntertainment])
	assert.Equal(t, 60, summary.TimeByActivity[models.ActivityIdle])
}

func TestUpdateDailyStatsIdempotent(t *testing.T) {
	m := newTestManager(t)
	base := noon()

	require.NoError(t, m.InsertActivity(sampleActivity(base)))
	require.NoError(t, m.UpdateDailyStats(base))
	require.NoError(t, m.UpdateDailyStats(base))

	summary, err := m.GetDailyStats(base)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.TotalSessions)
	assert.Equal(t, 30, summary.TotalTrackedTime)
}

func TestGetDailyStatsMissing(t *testing.T) {
	m := newTestManager(t)

	summary, err := m.GetDailyStats(noon())
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestAppUsageAccumulates(t *testing.T) {
	m := newTestManager(t)
	base := noon()

	require.NoError(t, m.UpdateAppUsage(base, "Firefox", 60))
	require.NoError(t, m.UpdateAppUsage(base, "Firefox", 30))
	require.NoError(t, m.UpdateAppUsage(base, "VS Code", 200))

	// 空应用名和非正时长直接忽略
	require.NoError(t, m.UpdateAppUsage(base, "", 60))
	require.NoError(t, m.UpdateAppUsage(base, "Firefox", 0))

	apps, err := m.GetTopApps(base, 10)
	require.NoError(t, err)
	require.Len(t, apps, 2)

	assert.Equal(t, "VS Code", apps[0].Name)
	assert.Equal(t, 200, apps[0].TotalTime)
	assert.Equal(t, 1, apps[0].Sessions)

	assert.Equal(t, "Firefox", apps[1].Name)
	assert.Equal(t, 90, apps[1].TotalTime)
	assert.Equal(t, 2, apps[1].Sessions)
}

func TestWebsiteUsage(t *testing.T) {
	m := newTestManager(t)
	base := noon()

	require.NoError(t, m.UpdateWebsiteUsage(base, "youtube.com", 120))
	require.NoError(t, m.UpdateWebsiteUsage(base, "github.com", 300))

	sites, err := m.GetTopWebsites(base, 1)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "github.com", sites[0].Name)
	assert.Equal(t, 300, sites[0].TotalTime)
}

func TestGetHourlyBreakdown(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	morning := sampleActivity(day.Add(9 * time.Hour))
	morning.ActivityType = models.ActivityProductive
	morning.IsProductive = true
	morning.Duration = 600

	evening := sampleActivity(day.Add(20 * time.Hour))
	evening.ActivityType = models.ActivityEntertainment
	evening.Duration = 300

	require.NoError(t, m.InsertActivity(morning))
	require.NoError(t, m.InsertActivity(evening))

	hourly, err := m.GetHourlyBreakdown(day)
	require.NoError(t, err)
	require.Len(t, hourly, 2)

	byHour := make(map[int]models.HourlyEntry)
	for _, h := range hourly {
		byHour[h.Hour] = h
	}

	assert.Equal(t, 600, byHour[9].TotalTime)
	assert.Equal(t, 600, byHour[9].ProductiveTime)
	assert.Equal(t, 300, byHour[20].TotalTime)
	assert.Equal(t, 0, byHour[20].ProductiveTime)
}

func TestCleanupOldData(t *testing.T) {
	m := newTestManager(t)
	base := noon()

	screenshotPath := filepath.Join(t.TempDir(), "old.jpg")
	require.NoError(t, os.WriteFile(screenshotPath, []byte("jpeg"), 0644))

	old := sampleActivity(base.AddDate(0, 0, -100))
	old.ScreenshotPath = screenshotPath
	recent := sampleActivity(base)

	require.NoError(t, m.InsertActivity(old))
	require.NoError(t, m.InsertActivity(recent))

	deleted, err := m.CleanupOldData(90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// 截图文件一并删除
	_, statErr := os.Stat(screenshotPath)
	assert.True(t, os.IsNotExist(statErr))

	count, err := m.GetRecordCount()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSettings(t *testing.T) {
	m := newTestManager(t)

	val, err := m.GetSetting("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", val)

	require.NoError(t, m.SetSetting("schema_version", "2"))
	val, err = m.GetSetting("schema_version", "")
	require.NoError(t, err)
	assert.Equal(t, "2", val)

	// 覆盖写
	require.NoError(t, m.SetSetting("schema_version", "3"))
	val, err = m.GetSetting("schema_version", "")
	require.NoError(t, err)
	assert.Equal(t, "3", val)
}
