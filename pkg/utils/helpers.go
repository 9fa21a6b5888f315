package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// ExtractDomain 从 URL 中提取域名（去掉 www. 前缀和端口）
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	// 补全协议,否则 url.Parse 解析不出 host
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	domain := strings.ToLower(parsed.Hostname())
	domain = strings.TrimPrefix(domain, "www.")
	return domain
}

var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// ExtractYouTubeID 从 URL 中提取 YouTube 视频 ID,不匹配返回空串
func ExtractYouTubeID(rawURL string) string {
	for _, p := range youtubeIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

var spacesRe = regexp.MustCompile(`\s+`)

// CleanText 清理文本:折叠空白并去掉不可打印字符
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = spacesRe.ReplaceAllString(text, " ")
	var b strings.Builder
	for _, r := range text {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

var wordRe = regexp.MustCompile(`\b[a-zA-Z]+\b`)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true,
}

// ExtractKeywords 从文本中提取关键词(去重,过滤停用词和短词)
func ExtractKeywords(text string, minLength int) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]bool)
	var keywords []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) < minLength || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

// ContainsAny 检查文本是否包含任意一个关键字(不区分大小写)
func ContainsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// TruncateString 截断字符串
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatDuration 将秒数格式化为人类可读形式,如 "2h 15m"
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

// TimeInRange 检查当前时间是否在指定范围内("15:04" 格式,支持跨天)
func TimeInRange(startTime, endTime string) (bool, error) {
	return timeInRangeAt(time.Now(), startTime, endTime)
}

func timeInRangeAt(now time.Time, startTime, endTime string) (bool, error) {
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return false, fmt.Errorf("invalid start time format: %w", err)
	}

	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return false, fmt.Errorf("invalid end time format: %w", err)
	}

	// 将时间应用到今天
	startToday := time.Date(now.Year(), now.Month(), now.Day(),
		start.Hour(), start.Minute(), 0, 0, now.Location())
	endToday := time.Date(now.Year(), now.Month(), now.Day(),
		end.Hour(), end.Minute(), 0, 0, now.Location())

	// 处理跨天的情况
	if endToday.Before(startToday) {
		if now.Before(endToday) {
			startToday = startToday.Add(-24 * time.Hour)
		} else {
			endToday = endToday.Add(24 * time.Hour)
		}
	}

	return now.After(startToday) && now.Before(endToday), nil
}

// HashBytes 计算字节数组的 MD5 哈希
func HashBytes(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}

// FormatBytes 格式化字节大小
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
