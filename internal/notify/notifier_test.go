package notify

import (
	"path/filepath"
	"testing"

	"ContentTrackerAI/internal/config"
	"ContentTrackerAI/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, mutate func(*models.AppConfig)) *Notifier {
	t.Helper()

	configMgr, err := config.NewManager(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	if mutate != nil {
		require.NoError(t, configMgr.Update(mutate))
	}
	return NewNotifier(configMgr)
}

func entertainment(duration int) *models.Activity {
	return &models.Activity{
		AppName:      "Firefox",
		ActivityType: models.ActivityEntertainment,
		Duration:     duration,
	}
}

func TestDistractionStreakTriggersAlert(t *testing.T) {
	n := newTestNotifier(t, func(cfg *models.AppConfig) {
		cfg.Notifications.DistractionThreshold = 60
	})

	n.ActivityRecorded(entertainment(30))

	n.mu.Lock()
	_, alerted := n.lastAlert[TypeDistraction]
	secs := n.distractionSecs
	n.mu.Unlock()
	assert.False(t, alerted)
	assert.Equal(t, 30, secs)

	n.ActivityRecorded(entertainment(30))

	n.mu.Lock()
	_, alerted = n.lastAlert[TypeDistraction]
	secs = n.distractionSecs
	n.mu.Unlock()
	assert.True(t, alerted)
	// 触发提醒后连击计数清零
	assert.Equal(t, 0, secs)
}

func TestDistractionStreakResets(t *testing.T) {
	n := newTestNotifier(t, func(cfg *models.AppConfig) {
		cfg.Notifications.DistractionThreshold = 600
	})

	n.ActivityRecorded(entertainment(120))

	tests := []struct {
		name     string
		activity *models.Activity
	}{
		{
			name: "productive resets streak",
			activity: &models.Activity{
				AppName:      "VS Code",
				ActivityType: models.ActivityProductive,
				IsProductive: true,
				Duration:     30,
			},
		},
		{
			name: "idle resets streak",
			activity: &models.Activity{
				AppName:      "System",
				ActivityType: models.ActivityIdle,
				IsIdle:       true,
				Duration:     30,
			},
		},
		{
			name: "neutral resets streak",
			activity: &models.Activity{
				AppName:      "Files",
				ActivityType: models.ActivityNeutral,
				Duration:     30,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n.ActivityRecorded(entertainment(120))
			n.ActivityRecorded(tt.activity)

			n.mu.Lock()
			secs := n.distractionSecs
			n.mu.Unlock()
			assert.Equal(t, 0, secs)
		})
	}
}

func TestNSFWAlertWithCooldown(t *testing.T) {
	n := newTestNotifier(t, nil)

	nsfw := &models.Activity{
		AppName:      "Firefox",
		ActivityType: models.ActivityAdult,
		IsNSFW:       true,
		NSFWScore:    0.9,
		Duration:     30,
	}

	n.ActivityRecorded(nsfw)

	n.mu.Lock()
	first, alerted := n.lastAlert[TypeNSFW]
	n.mu.Unlock()
	require.True(t, alerted)

	// 冷却期内重复命中不更新提醒时间
	n.ActivityRecorded(nsfw)

	n.mu.Lock()
	second := n.lastAlert[TypeNSFW]
	n.mu.Unlock()
	assert.Equal(t, first, second)
}

func TestNotificationsDisabled(t *testing.T) {
	n := newTestNotifier(t, func(cfg *models.AppConfig) {
		cfg.Notifications.Enabled = false
	})

	n.ActivityRecorded(entertainment(3600))

	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Empty(t, n.lastAlert)
	assert.Equal(t, 0, n.distractionSecs)
}
