package probe

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// browserNames 浏览器进程名/WM_CLASS 关键字
var browserNames = []string{
	"firefox", "chrome", "chromium", "brave", "opera", "edge", "vivaldi", "librewolf",
}

// knownSiteTitles 浏览器标题关键字到域名的映射
// 无法直接读取浏览器地址栏时,从标题推测当前站点
var knownSiteTitles = map[string]string{
	"youtube":        "youtube.com",
	"github":         "github.com",
	"stackoverflow":  "stackoverflow.com",
	"stack overflow": "stackoverflow.com",
	"reddit":         "reddit.com",
	"twitter":        "twitter.com",
	"facebook":       "facebook.com",
	"linkedin":       "linkedin.com",
	"instagram":      "instagram.com",
	"netflix":        "netflix.com",
	"amazon":         "amazon.com",
	"gmail":          "gmail.com",
	"google":         "google.com",
}

// isBrowserApp 按应用名判断是否浏览器
func isBrowserApp(appName string) bool {
	lower := strings.ToLower(appName)
	for _, b := range browserNames {
		if strings.Contains(lower, b) {
			return true
		}
	}
	return false
}

// extractURLFromTitle 从浏览器窗口标题推测站点域名
func extractURLFromTitle(title string) string {
	if title == "" {
		return ""
	}
	lower := strings.ToLower(title)
	for name, domain := range knownSiteTitles {
		if strings.Contains(lower, name) {
			return domain
		}
	}
	return ""
}

// extractAppFromTitle 从窗口标题推测应用名
// 常见格式: "Title - App Name" 或 "App Name: Title"
func extractAppFromTitle(title string) string {
	if title == "" {
		return "Unknown"
	}
	if idx := strings.LastIndex(title, " - "); idx >= 0 {
		return strings.TrimSpace(title[idx+3:])
	}
	if idx := strings.Index(title, ": "); idx >= 0 {
		return strings.TrimSpace(title[:idx])
	}
	if len(title) > 30 {
		return title[:30]
	}
	return title
}

// runCommand 执行外部命令并返回 stdout,默认 5 秒超时
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}
