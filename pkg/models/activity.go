package models

import "time"

// ActivityType 活动类型（高层分类）
type ActivityType string

const (
	ActivityProductive    ActivityType = "productive"
	ActivityEducational   ActivityType = "educational"
	ActivityEntertainment ActivityType = "entertainment"
	ActivitySocialMedia   ActivityType = "social_media"
	ActivityGaming        ActivityType = "gaming"
	ActivityShopping      ActivityType = "shopping"
	ActivityNews          ActivityType = "news"
	ActivityAdult         ActivityType = "adult"
	ActivityNeutral       ActivityType = "neutral"
	ActivityIdle          ActivityType = "idle"
	ActivityUnknown       ActivityType = "unknown"
)

// ContentType 内容类型
type ContentType string

const (
	ContentVideo      ContentType = "video"
	ContentArticle    ContentType = "article"
	ContentCode       ContentType = "code"
	ContentSocialFeed ContentType = "social_feed"
	ContentDocument   ContentType = "document"
	ContentImage      ContentType = "image"
	ContentGame       ContentType = "game"
	ContentChat       ContentType = "chat"
	ContentEmail      ContentType = "email"
	ContentTerminal   ContentType = "terminal"
	ContentBrowser    ContentType = "browser"
	ContentIdle       ContentType = "idle"
	ContentUnknown    ContentType = "unknown"
)

// DetectionMethod 检测方式
type DetectionMethod string

const (
	MethodCLIP     DetectionMethod = "clip"
	MethodOCR      DetectionMethod = "ocr"
	MethodURL      DetectionMethod = "url"
	MethodRules    DetectionMethod = "rules"
	MethodImage    DetectionMethod = "image"
	MethodCombined DetectionMethod = "combined"
)

// ClassificationResult 分类结果
// 由分类管线中的各阶段依次填充/覆盖，合并规则见 classifier 包：
//   - 置信度单调合并：后续阶段只有在置信度严格更高时才能覆盖；
//   - NSFW 为硬覆盖，不受置信度规则约束。
type ClassificationResult struct {
	ContentType        ContentType     `json:"content_type"`
	ContentCategory    string          `json:"content_category"`
	ContentDescription string          `json:"content_description"`
	ContentTitle       string          `json:"content_title"`
	ActivityType       ActivityType    `json:"activity_type"`
	IsProductive       bool            `json:"is_productive"`
	ProductivityScore  float64         `json:"productivity_score"` // [-1, 1]
	DetectionMethod    DetectionMethod `json:"detection_method"`
	Confidence         float64         `json:"confidence"` // [0, 1]
	NSFWScore          float64         `json:"nsfw_score"`
	IsNSFW             bool            `json:"is_nsfw"`
	ExtractedText      string          `json:"extracted_text"`
}

// NewClassificationResult 创建带默认值的分类结果
func NewClassificationResult() *ClassificationResult {
	return &ClassificationResult{
		ContentType:     ContentUnknown,
		ActivityType:    ActivityNeutral,
		DetectionMethod: MethodRules,
	}
}

// Activity 活动记录（核心数据模型）
// 每次采样分析产生一条，写入数据库后不再修改
type Activity struct {
	ID        int64     `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	// 应用/窗口信息
	AppName     string `json:"app_name" db:"app_name"`
	WindowTitle string `json:"window_title" db:"window_title"`
	ProcessName string `json:"process_name" db:"process_name"`
	ProcessID   int    `json:"process_id" db:"process_id"`

	// 网站信息（仅浏览器）
	Website string `json:"website" db:"website"`
	URL     string `json:"url" db:"url"`

	// 内容分类
	ContentType        ContentType `json:"content_type" db:"content_type"`
	ContentCategory    string      `json:"content_category" db:"content_category"`
	ContentDescription string      `json:"content_description" db:"content_description"`
	ContentTitle       string      `json:"content_title" db:"content_title"`

	// 活动分类
	ActivityType      ActivityType `json:"activity_type" db:"activity_type"`
	IsProductive      bool         `json:"is_productive" db:"is_productive"`
	ProductivityScore float64      `json:"productivity_score" db:"productivity_score"`

	// 检测信息
	DetectionMethod DetectionMethod `json:"detection_method" db:"detection_method"`
	Confidence      float64         `json:"confidence" db:"confidence"`

	// NSFW 检测
	NSFWScore float64 `json:"nsfw_score" db:"nsfw_score"`
	IsNSFW    bool    `json:"is_nsfw" db:"is_nsfw"`

	// 时长（秒，通常等于采样间隔）
	Duration int `json:"duration" db:"duration"`

	// 截图文件路径（仅在启用保存截图时设置）
	ScreenshotPath string `json:"screenshot_path" db:"screenshot_path"`

	// 元数据标记
	IsIdle     bool `json:"is_idle" db:"is_idle"`
	IsExcluded bool `json:"is_excluded" db:"is_excluded"`

	// OCR 提取的文本（已截断）
	ExtractedText string `json:"extracted_text" db:"extracted_text"`
}

// ApplyClassification 将分类结果合并到活动记录
func (a *Activity) ApplyClassification(c *ClassificationResult) {
	if c == nil {
		return
	}
	a.ContentType = c.ContentType
	a.ContentCategory = c.ContentCategory
	a.ContentDescription = c.ContentDescription
	a.ContentTitle = c.ContentTitle
	a.ActivityType = c.ActivityType
	a.IsProductive = c.IsProductive
	a.ProductivityScore = c.ProductivityScore
	a.DetectionMethod = c.DetectionMethod
	a.Confidence = c.Confidence
	a.NSFWScore = c.NSFWScore
	a.IsNSFW = c.IsNSFW
	a.ExtractedText = truncate(c.ExtractedText, 1000)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
