package classifier

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ContentTrackerAI/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppDetectorDetect(t *testing.T) {
	d := NewAppDetector("")

	tests := []struct {
		name             string
		processName      string
		wmClass          string
		expectedCategory string
		expectedActivity models.ActivityType
	}{
		{
			name:             "vscode by process",
			processName:      "code",
			expectedCategory: "coding",
			expectedActivity: models.ActivityProductive,
		},
		{
			name:             "firefox browser",
			processName:      "firefox",
			expectedCategory: "browser",
			expectedActivity: models.ActivityNeutral,
		},
		{
			name:             "terminal by wm class",
			wmClass:          "Alacritty",
			expectedCategory: "terminal",
			expectedActivity: models.ActivityProductive,
		},
		{
			name:             "video player",
			processName:      "vlc",
			expectedCategory: "video_player",
			expectedActivity: models.ActivityEntertainment,
		},
		{
			name:             "game launcher",
			processName:      "steam",
			expectedCategory: "gaming",
			expectedActivity: models.ActivityGaming,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.Detect(tt.processName, tt.wmClass, "")
			require.NotNil(t, result)

			assert.Equal(t, tt.expectedCategory, result.Category)
			assert.Equal(t, tt.expectedActivity, result.ActivityType)
			assert.InDelta(t, 0.9, result.Confidence, 0.001)
		})
	}
}

func TestAppDetectorFlags(t *testing.T) {
	d := NewAppDetector("")

	browser := d.Detect("firefox", "", "")
	assert.True(t, browser.IsBrowser)
	assert.False(t, browser.IsIDE)

	ide := d.Detect("pycharm", "", "")
	assert.True(t, ide.IsIDE)
	assert.False(t, ide.IsBrowser)

	terminal := d.Detect("konsole", "", "")
	assert.True(t, terminal.IsTerminal)

	player := d.Detect("mpv", "", "")
	assert.True(t, player.IsMediaPlayer)
}

func TestAppDetectorUnknownProcess(t *testing.T) {
	d := NewAppDetector("")

	result := d.Detect("some-obscure-tool", "", "")
	require.NotNil(t, result)

	assert.Equal(t, "unknown", result.Category)
	assert.Equal(t, models.ActivityNeutral, result.ActivityType)
	assert.InDelta(t, 0.5, result.Confidence, 0.001)
	assert.NotEmpty(t, result.AppName)
}

func TestAppDetectorTitleEnhancement(t *testing.T) {
	d := NewAppDetector("")

	t.Run("source file in title marks coding", func(t *testing.T) {
		result := d.Detect("some-obscure-tool", "", "scratch.py - editor")
		assert.Equal(t, "coding", result.Category)
		assert.Equal(t, models.ActivityProductive, result.ActivityType)
		assert.True(t, result.IsIDE)
	})

	t.Run("docs keyword in title marks educational", func(t *testing.T) {
		result := d.Detect("firefox", "", "Go standard library documentation")
		assert.Equal(t, models.ActivityEducational, result.ActivityType)
	})
}

func TestAppDetectorCustomRules(t *testing.T) {
	rulesPath := filepath.Join(t.TempDir(), "rules.json")

	custom := map[string]AppRule{
		"myeditor": {Category: "coding", Activity: "productive", Name: "MyEditor"},
	}
	data, err := json.Marshal(custom)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(rulesPath, data, 0644))

	d := NewAppDetector(rulesPath)

	result := d.Detect("myeditor", "", "")
	assert.Equal(t, "MyEditor", result.AppName)
	assert.Equal(t, "coding", result.Category)
	assert.Equal(t, models.ActivityProductive, result.ActivityType)
}

func TestIsProductiveApp(t *testing.T) {
	d := NewAppDetector("")

	assert.True(t, d.IsProductiveApp("code"))
	assert.True(t, d.IsProductiveApp("gnome-terminal"))
	assert.False(t, d.IsProductiveApp("vlc"))
	assert.False(t, d.IsProductiveApp("steam"))
}
