package classifier

import (
	"context"
	"image"
	"image/color"
	"testing"

	"ContentTrackerAI/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConfig 测试用配置提供者
type fakeConfig struct {
	detection models.DetectionConfig
}

func (f *fakeConfig) GetDetection() models.DetectionConfig {
	return f.detection
}

// fakeScorer 测试用打分器
type fakeScorer struct {
	name   string
	label  string
	score  float64
	err    error
	warmed bool
}

func (f *fakeScorer) Name() string     { return f.name }
func (f *fakeScorer) Available() bool  { return true }
func (f *fakeScorer) Warm(ctx context.Context) error {
	f.warmed = true
	return nil
}
func (f *fakeScorer) Score(ctx context.Context, img image.Image) (*ScoreResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ScoreResult{Label: f.label, Score: f.score}, nil
}

// flatImage 生成纯色测试图像(无边缘,布局为 simple)
func flatImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func newTestPipeline(detection models.DetectionConfig) *Pipeline {
	return NewPipeline(&fakeConfig{detection: detection})
}

func TestClassifyEditorWindow(t *testing.T) {
	p := newTestPipeline(models.DetectionConfig{UseRules: true})

	window := &models.WindowSnapshot{
		AppName:     "VS Code",
		WindowTitle: "main.go - contenttracker",
		ProcessName: "code",
	}

	result := p.Classify(context.Background(), nil, window)
	require.NotNil(t, result)

	assert.Equal(t, models.ContentCode, result.ContentType)
	assert.Equal(t, models.ActivityProductive, result.ActivityType)
	assert.True(t, result.IsProductive)
	assert.InDelta(t, 0.9, result.Confidence, 0.001)
	assert.InDelta(t, 1.0, result.ProductivityScore, 0.001)
	assert.Equal(t, "Coding in VS Code", result.ContentDescription)
}

func TestClassifyURLStage(t *testing.T) {
	tests := []struct {
		name             string
		url              string
		expectedCategory string
		expectedActivity models.ActivityType
	}{
		{
			name:             "youtube is entertainment",
			url:              "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expectedCategory: "video_streaming",
			expectedActivity: models.ActivityEntertainment,
		},
		{
			name:             "github is productive",
			url:              "https://github.com/golang/go/pulls",
			expectedCategory: "development",
			expectedActivity: models.ActivityProductive,
		},
		{
			name:             "coursera is educational",
			url:              "https://www.coursera.org/learn/machine-learning",
			expectedCategory: "learning",
			expectedActivity: models.ActivityEducational,
		},
		{
			name:             "unknown site stays neutral",
			url:              "https://example.org/page",
			expectedCategory: "other",
			expectedActivity: models.ActivityNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(models.DetectionConfig{UseURL: true})

			window := &models.WindowSnapshot{
				AppName:   "Firefox",
				IsBrowser: true,
				URL:       tt.url,
			}

			result := p.Classify(context.Background(), nil, window)

			assert.Equal(t, models.ContentBrowser, result.ContentType)
			assert.Equal(t, tt.expectedCategory, result.ContentCategory)
			assert.Equal(t, tt.expectedActivity, result.ActivityType)
			assert.Equal(t, models.MethodURL, result.DetectionMethod)
			assert.GreaterOrEqual(t, result.Confidence, 0.7)
		})
	}
}

func TestNSFWOverridesRules(t *testing.T) {
	p := newTestPipeline(models.DetectionConfig{
		UseNSFW:       true,
		UseRules:      true,
		NSFWThreshold: 0.5,
	})
	p.UseScorers(nil, &fakeScorer{name: "nsfw", score: 0.92})

	// 编辑器窗口,规则阶段会判定为生产力活动
	window := &models.WindowSnapshot{AppName: "vim", ProcessName: "vim"}

	result := p.Classify(context.Background(), flatImage(32, 32), window)

	assert.True(t, result.IsNSFW)
	assert.InDelta(t, 0.92, result.NSFWScore, 0.001)
	assert.Equal(t, models.ActivityAdult, result.ActivityType)
	assert.Equal(t, "adult_content", result.ContentCategory)
	assert.False(t, result.IsProductive)
	assert.InDelta(t, -1.0, result.ProductivityScore, 0.001)
}

func TestNSFWBelowThreshold(t *testing.T) {
	p := newTestPipeline(models.DetectionConfig{
		UseNSFW:       true,
		NSFWThreshold: 0.5,
	})
	p.UseScorers(nil, &fakeScorer{name: "nsfw", score: 0.3})

	result := p.Classify(context.Background(), flatImage(32, 32), nil)

	assert.False(t, result.IsNSFW)
	assert.InDelta(t, 0.3, result.NSFWScore, 0.001)
	assert.NotEqual(t, models.ActivityAdult, result.ActivityType)
}

func TestCLIPConfidenceGate(t *testing.T) {
	t.Run("low score does not override url stage", func(t *testing.T) {
		p := newTestPipeline(models.DetectionConfig{UseURL: true, UseCLIP: true})
		p.UseScorers(&fakeScorer{name: "clip", label: "gaming", score: 0.4}, nil)

		window := &models.WindowSnapshot{
			IsBrowser: true,
			URL:       "https://www.youtube.com/watch?v=abc12345678",
		}

		result := p.Classify(context.Background(), flatImage(32, 32), window)

		// URL 阶段已给出 0.7,CLIP 0.4 不足以覆盖
		assert.Equal(t, models.ActivityEntertainment, result.ActivityType)
		assert.Equal(t, models.MethodURL, result.DetectionMethod)
		assert.InDelta(t, 0.7, result.Confidence, 0.001)
	})

	t.Run("high score overrides", func(t *testing.T) {
		p := newTestPipeline(models.DetectionConfig{UseURL: true, UseCLIP: true})
		p.UseScorers(&fakeScorer{name: "clip", label: "gaming", score: 0.95}, nil)

		window := &models.WindowSnapshot{
			IsBrowser: true,
			URL:       "https://www.youtube.com/watch?v=abc12345678",
		}

		result := p.Classify(context.Background(), flatImage(32, 32), window)

		assert.Equal(t, models.ActivityGaming, result.ActivityType)
		assert.Equal(t, "gaming", result.ContentCategory)
		assert.Equal(t, models.MethodCLIP, result.DetectionMethod)
		assert.InDelta(t, 0.95, result.Confidence, 0.001)
	})

	t.Run("score at baseline threshold ignored", func(t *testing.T) {
		p := newTestPipeline(models.DetectionConfig{UseCLIP: true})
		p.UseScorers(&fakeScorer{name: "clip", label: "anime", score: 0.3}, nil)

		result := p.Classify(context.Background(), flatImage(32, 32), nil)

		assert.NotEqual(t, models.MethodCLIP, result.DetectionMethod)
		assert.NotEqual(t, models.ActivityEntertainment, result.ActivityType)
	})
}

func TestImageLayoutFallback(t *testing.T) {
	// 纯色画面无边缘,布局为 simple,内容类型未知时推测为视频
	p := newTestPipeline(models.DetectionConfig{UseImage: true})

	result := p.Classify(context.Background(), flatImage(400, 300), nil)

	assert.Equal(t, models.ContentVideo, result.ContentType)
	assert.Equal(t, models.ActivityNeutral, result.ActivityType)
}

func TestClassifyNilInputs(t *testing.T) {
	p := newTestPipeline(models.DetectionConfig{
		UseURL: true, UseOCR: true, UseImage: true, UseRules: true,
	})

	result := p.Classify(context.Background(), nil, nil)
	require.NotNil(t, result)

	assert.Equal(t, models.ContentUnknown, result.ContentType)
	assert.Equal(t, models.ActivityNeutral, result.ActivityType)
	assert.Equal(t, "Unknown activity", result.ContentDescription)
	assert.False(t, result.IsProductive)
}

func TestMergeOCRProgrammingLanguage(t *testing.T) {
	p := newTestPipeline(models.DetectionConfig{MinTextLength: 10})

	analysis := p.ocr.AnalyzeText("import os\ndef main():\n    print(\"hello\")")
	require.NotNil(t, analysis)
	require.Equal(t, "python", analysis.ProgrammingLanguage)

	result := models.NewClassificationResult()
	p.mergeOCR(result, analysis)

	assert.Equal(t, models.ContentCode, result.ContentType)
	assert.Equal(t, "coding_python", result.ContentCategory)
	assert.Equal(t, models.ActivityProductive, result.ActivityType)
	assert.InDelta(t, 0.8, result.Confidence, 0.001)
	assert.Equal(t, models.MethodOCR, result.DetectionMethod)
}

func TestMergeOCRSuggestions(t *testing.T) {
	p := newTestPipeline(models.DetectionConfig{MinTextLength: 10})

	t.Run("tutorial suggestion", func(t *testing.T) {
		analysis := p.ocr.AnalyzeText("Learn how to build a web server, a complete tutorial for beginners")
		require.NotNil(t, analysis)

		result := models.NewClassificationResult()
		p.mergeOCR(result, analysis)
		assert.Equal(t, models.ActivityEducational, result.ActivityType)
	})

	t.Run("entertainment suggestion", func(t *testing.T) {
		analysis := p.ocr.AnalyzeText("Season 3 Episode 12 of the greatest series ever made")
		require.NotNil(t, analysis)

		result := models.NewClassificationResult()
		p.mergeOCR(result, analysis)
		assert.Equal(t, models.ActivityEntertainment, result.ActivityType)
	})
}

func TestBrowserTitleRules(t *testing.T) {
	tests := []struct {
		name             string
		title            string
		expectedType     models.ContentType
		expectedActivity models.ActivityType
	}{
		{
			name:             "youtube tutorial is educational",
			title:            "How to use goroutines - Tutorial - YouTube",
			expectedType:     models.ContentVideo,
			expectedActivity: models.ActivityEducational,
		},
		{
			name:             "plain youtube is entertainment",
			title:            "Cat compilation 2025 - YouTube",
			expectedType:     models.ContentVideo,
			expectedActivity: models.ActivityEntertainment,
		},
		{
			name:             "github is productive",
			title:            "Pull requests · golang/go · GitHub",
			expectedType:     models.ContentCode,
			expectedActivity: models.ActivityProductive,
		},
		{
			name:             "reddit is social media",
			title:            "r/golang - Reddit",
			expectedType:     models.ContentSocialFeed,
			expectedActivity: models.ActivitySocialMedia,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(models.DetectionConfig{UseRules: true})

			window := &models.WindowSnapshot{
				AppName:     "Firefox",
				WindowTitle: tt.title,
				IsBrowser:   true,
			}

			result := p.Classify(context.Background(), nil, window)
			assert.Equal(t, tt.expectedType, result.ContentType)
			assert.Equal(t, tt.expectedActivity, result.ActivityType)
		})
	}
}

func TestRulesStageUsesAppTable(t *testing.T) {
	tests := []struct {
		name             string
		window           *models.WindowSnapshot
		expectedType     models.ContentType
		expectedCategory string
		expectedActivity models.ActivityType
		minConfidence    float64
	}{
		{
			name:             "terminal from process name",
			window:           &models.WindowSnapshot{AppName: "Terminal", ProcessName: "gnome-terminal"},
			expectedType:     models.ContentTerminal,
			expectedActivity: models.ActivityProductive,
			minConfidence:    0.85,
		},
		{
			name:             "music player from wm class",
			window:           &models.WindowSnapshot{AppName: "Spotify", WMClass: "spotify", WindowTitle: "Daft Punk - Discovery"},
			expectedType:     models.ContentVideo,
			expectedActivity: models.ActivityEntertainment,
			minConfidence:    0.8,
		},
		{
			name:             "game launcher",
			window:           &models.WindowSnapshot{AppName: "Steam", ProcessName: "steam"},
			expectedType:     models.ContentUnknown,
			expectedCategory: "gaming",
			expectedActivity: models.ActivityGaming,
			minConfidence:    0.8,
		},
		{
			name:             "note taking app from rule table",
			window:           &models.WindowSnapshot{AppName: "Obsidian", ProcessName: "obsidian"},
			expectedType:     models.ContentUnknown,
			expectedCategory: "notes",
			expectedActivity: models.ActivityProductive,
			minConfidence:    0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(models.DetectionConfig{UseRules: true})

			result := p.Classify(context.Background(), nil, tt.window)

			assert.Equal(t, tt.expectedType, result.ContentType)
			if tt.expectedCategory != "" {
				assert.Equal(t, tt.expectedCategory, result.ContentCategory)
			}
			assert.Equal(t, tt.expectedActivity, result.ActivityType)
			assert.GreaterOrEqual(t, result.Confidence, tt.minConfidence)
		})
	}
}

func TestRulesStageDisplayName(t *testing.T) {
	p := newTestPipeline(models.DetectionConfig{UseRules: true})

	// 描述使用规则表里的应用显示名,而不是原始进程名
	window := &models.WindowSnapshot{AppName: "code", ProcessName: "code", WindowTitle: "main.go"}
	result := p.Classify(context.Background(), nil, window)

	assert.Equal(t, "Coding in VS Code", result.ContentDescription)
	assert.Equal(t, "coding", result.ContentCategory)
}

func TestProductivityScoreTable(t *testing.T) {
	assert.InDelta(t, 1.0, ProductivityScore(models.ActivityProductive), 0.001)
	assert.InDelta(t, 0.8, ProductivityScore(models.ActivityEducational), 0.001)
	assert.InDelta(t, 0.0, ProductivityScore(models.ActivityNeutral), 0.001)
	assert.InDelta(t, -0.3, ProductivityScore(models.ActivityEntertainment), 0.001)
	assert.InDelta(t, -0.4, ProductivityScore(models.ActivitySocialMedia), 0.001)
	assert.InDelta(t, -1.0, ProductivityScore(models.ActivityAdult), 0.001)
	// 未知类型为 0
	assert.InDelta(t, 0.0, ProductivityScore(models.ActivityUnknown), 0.001)
}
