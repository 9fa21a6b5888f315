package report

import (
	"testing"
	"time"

	"ContentTrackerAI/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore 测试用存储
type fakeStore struct {
	cached     *models.DailySummary
	activities []*models.Activity
	topApps    []models.UsageEntry
	topSites   []models.UsageEntry
	hourly     []models.HourlyEntry
}

func (f *fakeStore) GetDailyStats(date time.Time) (*models.DailySummary, error) {
	return f.cached, nil
}

func (f *fakeStore) GetActivitiesForDate(date time.Time) ([]*models.Activity, error) {
	return f.activities, nil
}

func (f *fakeStore) GetActivities(start, end time.Time) ([]*models.Activity, error) {
	return f.activities, nil
}

func (f *fakeStore) GetTopApps(date time.Time, limit int) ([]models.UsageEntry, error) {
	return f.topApps, nil
}

func (f *fakeStore) GetTopWebsites(date time.Time, limit int) ([]models.UsageEntry, error) {
	return f.topSites, nil
}

func (f *fakeStore) GetHourlyBreakdown(date time.Time) ([]models.HourlyEntry, error) {
	return f.hourly, nil
}

func activity(ts time.Time, app string, activityType models.ActivityType, duration int) *models.Activity {
	return &models.Activity{
		Timestamp:    ts,
		AppName:      app,
		ActivityType: activityType,
		Duration:     duration,
		IsIdle:       activityType == models.ActivityIdle,
	}
}

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name     string
		times    map[models.ActivityType]int
		total    int
		expected float64
	}{
		{
			name:     "all productive is 100",
			times:    map[models.ActivityType]int{models.ActivityProductive: 3600},
			total:    3600,
			expected: 100,
		},
		{
			name:     "all neutral is 50",
			times:    map[models.ActivityType]int{models.ActivityNeutral: 3600},
			total:    3600,
			expected: 50,
		},
		{
			name:     "all adult clamps to 0",
			times:    map[models.ActivityType]int{models.ActivityAdult: 3600},
			total:    3600,
			expected: 0,
		},
		{
			name: "mixed half productive half social",
			times: map[models.ActivityType]int{
				models.ActivityProductive:  1800,
				models.ActivitySocialMedia: 1800,
			},
			total: 3600,
			// (0.5*1.0 + 0.5*(-0.4) + 1) * 50 = 65
			expected: 65,
		},
		{
			name: "idle time ignored in weighting",
			times: map[models.ActivityType]int{
				models.ActivityProductive: 1800,
				models.ActivityIdle:       100000,
			},
			total:    1800,
			expected: 100,
		},
		{
			name:     "zero total is 0",
			times:    map[models.ActivityType]int{},
			total:    0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, weightedScore(tt.times, tt.total), 0.001)
		})
	}
}

func TestDailySummaryComputedFromActivities(t *testing.T) {
	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		activities: []*models.Activity{
			activity(base, "VS Code", models.ActivityProductive, 60),
			activity(base.Add(time.Minute), "VS Code", models.ActivityProductive, 60),
			activity(base.Add(2*time.Minute), "Firefox", models.ActivityEntertainment, 30),
			activity(base.Add(3*time.Minute), "System", models.ActivityIdle, 300),
		},
		topApps: []models.UsageEntry{{Name: "VS Code", TotalTime: 120}},
	}

	c := NewStatsCalculator(store)
	summary, err := c.DailySummary(base)
	require.NoError(t, err)
	require.NotNil(t, summary)

	// 空闲不计入追踪时长
	assert.Equal(t, 150, summary.TotalTrackedTime)
	assert.Equal(t, 4, summary.TotalSessions)
	// VS Code -> Firefox -> System 两次切换
	assert.Equal(t, 2, summary.AppSwitches)
	assert.Equal(t, 120, summary.TimeByActivity[models.ActivityProductive])
	assert.Equal(t, 300, summary.TimeByActivity[models.ActivityIdle])
	// (120*1.0 + 30*(-0.3)) / 150 = 0.74 -> 87
	assert.InDelta(t, 87.0, summary.ProductivityScore, 0.001)
	assert.Equal(t, "VS Code", summary.TopApps[0].Name)
}

func TestDailySummaryPrefersCachedStats(t *testing.T) {
	cached := &models.DailySummary{
		Date:              "2026-08-20",
		TotalTrackedTime:  999,
		ProductivityScore: 42,
		TotalSessions:     7,
		TimeByActivity:    map[models.ActivityType]int{},
	}
	store := &fakeStore{
		cached: cached,
		activities: []*models.Activity{
			activity(time.Now(), "Firefox", models.ActivityNeutral, 30),
		},
	}

	c := NewStatsCalculator(store)
	summary, err := c.DailySummary(time.Now())
	require.NoError(t, err)

	// 聚合表有缓存时直接使用,不从活动记录重算
	assert.Equal(t, 999, summary.TotalTrackedTime)
	assert.Equal(t, 7, summary.TotalSessions)
}

func TestDailySummaryEmptyDay(t *testing.T) {
	c := NewStatsCalculator(&fakeStore{})

	summary, err := c.DailySummary(time.Now())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 0, summary.TotalSessions)
	assert.InDelta(t, 0.0, summary.ProductivityScore, 0.001)
}

func TestWeekly(t *testing.T) {
	now := time.Now()
	store := &fakeStore{
		activities: []*models.Activity{
			activity(now.AddDate(0, 0, -1), "VS Code", models.ActivityProductive, 120),
			activity(now, "Firefox", models.ActivityEntertainment, 60),
			activity(now, "Firefox", models.ActivityEntertainment, 30),
		},
	}

	c := NewStatsCalculator(store)
	breakdown, err := c.Weekly(7)
	require.NoError(t, err)

	assert.Equal(t, 7, breakdown.PeriodDays)
	assert.Equal(t, 210, breakdown.TotalTime)
	assert.Equal(t, 120, breakdown.TotalByType[models.ActivityProductive])
	assert.Equal(t, 90, breakdown.TotalByType[models.ActivityEntertainment])
	assert.Len(t, breakdown.DailyByType, 2)
}

func TestTopActivities(t *testing.T) {
	now := time.Now()
	mkActivity := func(desc string, duration int) *models.Activity {
		return &models.Activity{
			Timestamp:          now,
			AppName:            "App",
			ContentDescription: desc,
			ActivityType:       models.ActivityNeutral,
			Duration:           duration,
		}
	}

	store := &fakeStore{
		activities: []*models.Activity{
			mkActivity("Coding in VS Code", 60),
			mkActivity("Coding in VS Code", 60),
			mkActivity("Watching: Video Streaming", 200),
			mkActivity("Browsing social media", 30),
		},
	}

	c := NewStatsCalculator(store)
	top, err := c.TopActivities(now, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "Watching: Video Streaming", top[0].Description)
	assert.Equal(t, 200, top[0].TotalTime)
	assert.Equal(t, "Coding in VS Code", top[1].Description)
	assert.Equal(t, 120, top[1].TotalTime)
	assert.Equal(t, 2, top[1].SessionCount)
}

func TestGeneratorDaily(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{
		activities: []*models.Activity{
			activity(base, "VS Code", models.ActivityProductive, 60),
			activity(base.Add(time.Minute), "Firefox", models.ActivityEntertainment, 30),
		},
	}

	g := NewGenerator(store)
	report, err := g.Daily(base)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-20", report.Date)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 60, report.ByActivityType[models.ActivityProductive].Time)
	assert.Equal(t, 1, report.ByActivityType[models.ActivityProductive].Count)
	assert.Len(t, report.RecentActivities, 2)
}
