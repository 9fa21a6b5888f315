package classifier

import (
	"strings"

	"ContentTrackerAI/pkg/utils"
)

// siteRule 站点分类规则
type siteRule struct {
	Category string
	Activity string
	Name     string
}

// siteRules 已知站点分类表(域名子串匹配)
var siteRules = map[string]siteRule{
	// 视频流媒体
	"youtube.com": {"video_streaming", "entertainment", "YouTube"},
	"youtu.be":    {"video_streaming", "entertainment", "YouTube"},
	"netflix.com": {"video_streaming", "entertainment", "Netflix"},
	"twitch.tv":   {"live_streaming", "entertainment", "Twitch"},
	"vimeo.com":   {"video_streaming", "neutral", "Vimeo"},

	// 社交媒体
	"facebook.com":  {"social_media", "social_media", "Facebook"},
	"twitter.com":   {"social_media", "social_media", "Twitter"},
	"x.com":         {"social_media", "social_media", "X"},
	"instagram.com": {"social_media", "social_media", "Instagram"},
	"tiktok.com":    {"social_media", "social_media", "TikTok"},
	"reddit.com":    {"forum", "social_media", "Reddit"},
	"linkedin.com":  {"professional", "productive", "LinkedIn"},

	// 开发
	"github.com":            {"development", "productive", "GitHub"},
	"gitlab.com":            {"development", "productive", "GitLab"},
	"stackoverflow.com":     {"development", "productive", "Stack Overflow"},
	"developer.mozilla.org": {"documentation", "educational", "MDN"},

	// 学习
	"udemy.com":       {"learning", "educational", "Udemy"},
	"coursera.org":    {"learning", "educational", "Coursera"},
	"khanacademy.org": {"learning", "educational", "Khan Academy"},

	// 购物
	"amazon.com": {"shopping", "shopping", "Amazon"},
	"ebay.com":   {"shopping", "shopping", "eBay"},

	// 新闻
	"bbc.com": {"news", "news", "BBC"},
	"cnn.com": {"news", "news", "CNN"},

	// 生产力工具
	"docs.google.com": {"productivity", "productive", "Google Docs"},
	"notion.so":       {"productivity", "productive", "Notion"},
	"trello.com":      {"productivity", "productive", "Trello"},

	// 邮件
	"mail.google.com":  {"email", "productive", "Gmail"},
	"outlook.live.com": {"email", "productive", "Outlook"},
}

// URLResult URL 分析结果
type URLResult struct {
	URL      string
	Domain   string
	Website  string
	Category string // 站点类别,未匹配时为 "other"
	Activity string
	Name     string
	VideoID  string // 仅 YouTube
}

// URLAnalyzer URL 分析器
type URLAnalyzer struct{}

// NewURLAnalyzer 创建 URL 分析器
func NewURLAnalyzer() *URLAnalyzer {
	return &URLAnalyzer{}
}

// Analyze 分析 URL 并按站点规则分类,空 URL 返回 nil
func (a *URLAnalyzer) Analyze(rawURL string) *URLResult {
	if rawURL == "" {
		return nil
	}

	domain := utils.ExtractDomain(rawURL)

	result := &URLResult{
		URL:      rawURL,
		Domain:   domain,
		Website:  domain,
		Category: "other",
		Activity: "neutral",
	}

	for siteDomain, rule := range siteRules {
		if strings.Contains(domain, siteDomain) {
			result.Category = rule.Category
			result.Activity = rule.Activity
			result.Name = rule.Name
			break
		}
	}

	if strings.Contains(domain, "youtube.com") || strings.Contains(domain, "youtu.be") {
		result.VideoID = utils.ExtractYouTubeID(rawURL)
	}

	return result
}
