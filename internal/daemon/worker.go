package daemon

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"ContentTrackerAI/internal/classifier"
	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"
	"ContentTrackerAI/pkg/utils"

	"github.com/nfnt/resize"
)

// analysisWorker 分析协程
// 从队列中取出采样进行分类并落库,ctx 取消后退出
func (d *Daemon) analysisWorker() {
	defer d.wg.Done()
	logger.Info("分析协程已启动")

	for {
		select {
		case <-d.ctx.Done():
			logger.Info("分析协程已停止")
			return
		case item := <-d.queue:
			activity, err := d.analyze(item)
			if err != nil {
				d.state.recordError()
				logger.Error("分析失败: %v", err)
				continue
			}

			if err := d.sink.InsertActivity(activity); err != nil {
				d.state.recordError()
				logger.Error("活动落库失败: %v", err)
				continue
			}

			d.state.recordAnalysis()

			// 实时累加应用/网站使用时长
			day := activity.Timestamp
			if err := d.sink.UpdateAppUsage(day, activity.AppName, activity.Duration); err != nil {
				logger.Warn("更新应用使用统计失败: %v", err)
			}
			if activity.Website != "" {
				if err := d.sink.UpdateWebsiteUsage(day, activity.Website, activity.Duration); err != nil {
					logger.Warn("更新网站使用统计失败: %v", err)
				}
			}

			if d.notifier != nil {
				d.notifier.ActivityRecorded(activity)
			}

			logger.Debug("活动已记录: %s", activity.ContentDescription)
		}
	}
}

// analyze 对一次采样进行分类并构建活动记录
func (d *Daemon) analyze(item *captureItem) (*models.Activity, error) {
	window := item.window

	activity := &models.Activity{
		Timestamp:   item.timestamp,
		AppName:     window.AppName,
		WindowTitle: window.WindowTitle,
		ProcessName: window.ProcessName,
		ProcessID:   window.ProcessID,
		Duration:    d.configMgr.GetMonitoring().Interval,
	}
	if window.IsBrowser {
		activity.Website = utils.ExtractDomain(window.URL)
		activity.URL = window.URL
	}

	if d.classify != nil {
		result := d.classify.Classify(d.ctx, item.capture.Image, window)
		activity.ApplyClassification(result)
	} else {
		basicClassify(activity, window)
	}

	// 保存截图文件(默认关闭)
	if d.configMgr.GetMonitoring().SaveScreenshots {
		path, err := d.saveScreenshotArtifact(item)
		if err != nil {
			logger.Warn("保存截图失败: %v", err)
		} else {
			activity.ScreenshotPath = path
		}
	}

	return activity, nil
}

// saveScreenshotArtifact 将截图压缩保存到按日期分目录的截图库
func (d *Daemon) saveScreenshotArtifact(item *captureItem) (string, error) {
	monitoring := d.configMgr.GetMonitoring()
	storageCfg := d.configMgr.GetStorage()

	screenshotsDir := storageCfg.ScreenshotsDir
	if screenshotsDir == "" {
		screenshotsDir = filepath.Join(storageCfg.DataDir, "screenshots")
	}
	dateDir := filepath.Join(screenshotsDir, item.timestamp.Format("2006-01-02"))
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	img := item.capture.Image

	// 按配置缩放宽度,降低存储占用
	if monitoring.ScreenshotMaxWidth > 0 && img.Bounds().Dx() > monitoring.ScreenshotMaxWidth {
		img = resize.Resize(uint(monitoring.ScreenshotMaxWidth), 0, img, resize.Lanczos3)
	}

	quality := monitoring.ScreenshotQuality
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to encode JPEG: %w", err)
	}

	filename := fmt.Sprintf("activity_%s.jpg", item.timestamp.Format("150405"))
	filePath := filepath.Join(dateDir, filename)
	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.Debug("截图已保存: %s (%.2f KB)", filePath, float64(buf.Len())/1024)
	return filePath, nil
}

// basicClassify 无分类管线时的基础规则分类
func basicClassify(activity *models.Activity, window *models.WindowSnapshot) {
	appLower := strings.ToLower(window.AppName)
	titleLower := strings.ToLower(window.WindowTitle)

	switch {
	case window.IsBrowser:
		activity.ContentType = models.ContentBrowser
		activity.ActivityType = models.ActivityNeutral

		switch {
		case strings.Contains(titleLower, "youtube") || strings.Contains(window.URL, "youtube"):
			activity.Website = "youtube.com"
			activity.ContentCategory = "video"
			activity.ActivityType = models.ActivityEntertainment
			activity.ContentDescription = "Watching: " + utils.TruncateString(window.WindowTitle, 50)
		case strings.Contains(titleLower, "github") || strings.Contains(window.URL, "github"):
			activity.Website = "github.com"
			activity.ContentCategory = "code"
			activity.ActivityType = models.ActivityProductive
			activity.IsProductive = true
			activity.ProductivityScore = 0.8
		case utils.ContainsAny(titleLower, []string{"facebook", "twitter", "instagram", "reddit"}):
			activity.ContentCategory = "social_feed"
			activity.ActivityType = models.ActivitySocialMedia
		default:
			activity.ContentDescription = "Browsing: " + utils.TruncateString(window.WindowTitle, 50)
		}

	case utils.ContainsAny(appLower, []string{"code", "sublime", "atom", "vim", "emacs", "idea", "pycharm"}):
		activity.ContentType = models.ContentCode
		activity.ActivityType = models.ActivityProductive
		activity.IsProductive = true
		activity.ProductivityScore = 1.0
		activity.ContentDescription = "Coding in " + window.AppName

	case utils.ContainsAny(appLower, []string{"terminal", "konsole", "xterm", "alacritty", "kitty"}):
		activity.ContentType = models.ContentTerminal
		activity.ActivityType = models.ActivityProductive
		activity.IsProductive = true
		activity.ProductivityScore = 0.8
		activity.ContentDescription = "Using terminal"

	case utils.ContainsAny(appLower, []string{"vlc", "mpv", "totem", "celluloid"}):
		activity.ContentType = models.ContentVideo
		activity.ActivityType = models.ActivityEntertainment
		activity.ContentDescription = "Watching: " + utils.TruncateString(window.WindowTitle, 50)

	case utils.ContainsAny(appLower, []string{"libreoffice", "word", "excel", "writer", "calc"}):
		activity.ContentType = models.ContentDocument
		activity.ActivityType = models.ActivityProductive
		activity.IsProductive = true
		activity.ProductivityScore = 0.9
		activity.ContentDescription = "Working on document: " + utils.TruncateString(window.WindowTitle, 50)

	default:
		activity.ContentType = models.ContentUnknown
		activity.ActivityType = models.ActivityNeutral
		activity.ContentDescription = "Using " + window.AppName
	}

	activity.DetectionMethod = models.MethodRules
	activity.Confidence = 0.5
	if activity.ProductivityScore == 0 {
		activity.ProductivityScore = classifier.ProductivityScore(activity.ActivityType)
		activity.IsProductive = activity.ProductivityScore > 0
	}
}
