package classifier

import (
	"context"
	"image"
	"strings"
	"time"

	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"
	"ContentTrackerAI/pkg/utils"
)

// ConfigProvider 提供检测配置,config.Manager 实现该接口
type ConfigProvider interface {
	GetDetection() models.DetectionConfig
}

// productivityScores 活动类型到生产力分值的权重表
var productivityScores = map[models.ActivityType]float64{
	models.ActivityProductive:    1.0,
	models.ActivityEducational:   0.8,
	models.ActivityNeutral:       0.0,
	models.ActivityNews:          -0.1,
	models.ActivityShopping:      -0.2,
	models.ActivityEntertainment: -0.3,
	models.ActivitySocialMedia:   -0.4,
	models.ActivityGaming:        -0.3,
	models.ActivityAdult:         -1.0,
}

// ProductivityScore 查表返回活动类型的生产力分值,未知类型为 0
func ProductivityScore(activity models.ActivityType) float64 {
	return productivityScores[activity]
}

// Pipeline 多阶段内容分类管线
//
// 各阶段按固定顺序执行: URL -> OCR -> 图像 -> CLIP -> NSFW -> 规则兜底。
// 置信度单调合并: 每个阶段只有在置信度更高时才能覆盖前序结果;
// NSFW 命中为硬覆盖,在所有阶段之后无条件改写活动类型。
// 任一阶段失败只记日志,不中断整条管线。
type Pipeline struct {
	cfg      ConfigProvider
	url      *URLAnalyzer
	ocr      *OCRAnalyzer
	img      *ImageAnalyzer
	appRules *AppDetector
	clip     Scorer
	nsfw     Scorer
}

// NewPipeline 创建分类管线
func NewPipeline(cfg ConfigProvider) *Pipeline {
	detection := cfg.GetDetection()

	p := &Pipeline{
		cfg:      cfg,
		url:      NewURLAnalyzer(),
		ocr:      NewOCRAnalyzer(detection.OCRTimeout, detection.MinTextLength),
		img:      NewImageAnalyzer(),
		appRules: NewAppDetector(""),
		clip:     NewCLIPScorer(detection.CLIPEndpoint),
		nsfw:     NewNSFWScorer(detection.NSFWEndpoint),
	}

	logger.Info("分类管线初始化完成 (ocr=%v, clip=%v, nsfw=%v)",
		p.ocr.Available(), p.clip.Available(), p.nsfw.Available())
	return p
}

// UseScorers 替换远端打分器(测试注入用)
func (p *Pipeline) UseScorers(clip, nsfw Scorer) {
	if clip != nil {
		p.clip = clip
	}
	if nsfw != nil {
		p.nsfw = nsfw
	}
}

// AppDetector 返回内置应用检测器
func (p *Pipeline) AppDetector() *AppDetector {
	return p.appRules
}

// Warm 预热远端打分服务,失败仅告警
func (p *Pipeline) Warm(ctx context.Context) {
	if p.clip.Available() {
		p.clip.Warm(ctx)
	}
	if p.nsfw.Available() {
		p.nsfw.Warm(ctx)
	}
}

// Classify 对一次采样进行完整分类
// screenshot 和 window 均可为 nil,缺失的输入对应的阶段自动跳过
func (p *Pipeline) Classify(ctx context.Context, screenshot image.Image, window *models.WindowSnapshot) *models.ClassificationResult {
	start := time.Now()
	detection := p.cfg.GetDetection()
	result := models.NewClassificationResult()

	var appName, url string
	if window != nil {
		appName = window.AppName
		url = window.URL
	}

	// 阶段1: URL 分析
	if detection.UseURL && url != "" {
		if urlResult := p.url.Analyze(url); urlResult != nil {
			p.mergeURL(result, urlResult)
		}
	}

	// 阶段2: OCR 文本分析
	if detection.UseOCR && screenshot != nil && p.ocr.Available() {
		text, err := p.ocr.ExtractText(ctx, screenshot)
		if err != nil {
			logger.Debug("OCR 提取失败: %v", err)
		} else if text != "" {
			result.ExtractedText = utils.TruncateString(text, 500)
			if analysis := p.ocr.AnalyzeText(text); analysis != nil {
				p.mergeOCR(result, analysis)
			}
		}
	}

	// 阶段3: 图像启发式分析
	if detection.UseImage && screenshot != nil {
		if imgResult := p.img.Analyze(screenshot); imgResult != nil {
			p.mergeImage(result, imgResult)
		}
	}

	// 阶段4: CLIP 分类
	if detection.UseCLIP && screenshot != nil && p.clip.Available() {
		score, err := p.clip.Score(ctx, screenshot)
		if err != nil {
			logger.Debug("CLIP 分类跳过: %v", err)
		} else if score != nil {
			p.mergeCLIP(result, score)
		}
	}

	// 阶段5: NSFW 检测
	if detection.UseNSFW && screenshot != nil && p.nsfw.Available() {
		score, err := p.nsfw.Score(ctx, screenshot)
		if err != nil {
			logger.Debug("NSFW 检测跳过: %v", err)
		} else if score != nil {
			result.NSFWScore = score.Score
			result.IsNSFW = score.Score >= detection.NSFWThreshold
		}
	}

	// 阶段6: 窗口信息规则兜底
	if detection.UseRules {
		p.applyRules(result, window)
	}

	// NSFW 命中为硬覆盖,不受规则阶段影响
	if result.IsNSFW {
		result.ActivityType = models.ActivityAdult
		result.ContentCategory = "adult_content"
	}

	// 最终生产力分值
	result.ProductivityScore = ProductivityScore(result.ActivityType)
	result.IsProductive = result.ProductivityScore > 0

	if result.ContentDescription == "" {
		result.ContentDescription = generateDescription(result, appName)
	}

	logger.Debug("分类完成: %s/%s conf=%.2f method=%s 耗时=%s",
		result.ContentType, result.ActivityType, result.Confidence,
		result.DetectionMethod, time.Since(start))
	return result
}

// mergeURL 合并 URL 分析结果,置信度提升到至少 0.7
func (p *Pipeline) mergeURL(result *models.ClassificationResult, urlResult *URLResult) {
	if urlResult.Website != "" {
		result.ContentType = models.ContentBrowser
	}
	if urlResult.Category != "" {
		result.ContentCategory = urlResult.Category
	}
	if urlResult.Activity != "" {
		result.ActivityType = models.ActivityType(urlResult.Activity)
		if result.Confidence < 0.7 {
			result.Confidence = 0.7
		}
		result.DetectionMethod = models.MethodURL
	}
}

// mergeOCR 合并 OCR 文本分析结果
// 检测到编程语言时判定为编码活动,置信度提升到至少 0.8
func (p *Pipeline) mergeOCR(result *models.ClassificationResult, analysis *TextAnalysis) {
	if analysis.ProgrammingLanguage != "" {
		result.ContentType = models.ContentCode
		result.ContentCategory = "coding_" + analysis.ProgrammingLanguage
		result.ActivityType = models.ActivityProductive
		if result.Confidence < 0.8 {
			result.Confidence = 0.8
		}
		result.DetectionMethod = models.MethodOCR
	}

	if analysis.HasSuggestion("tutorial") {
		result.ActivityType = models.ActivityEducational
	} else if analysis.HasSuggestion("entertainment") {
		result.ActivityType = models.ActivityEntertainment
	}
}

// mergeImage 合并图像分析结果
// 边缘稀疏的简单布局且内容类型未知时推测为视频
func (p *Pipeline) mergeImage(result *models.ClassificationResult, imgResult *ImageResult) {
	if imgResult.LayoutType == "simple" && result.ContentType == models.ContentUnknown {
		result.ContentType = models.ContentVideo
	}
}

// mergeCLIP 合并 CLIP 分类结果
// 仅在置信度超过 0.3 且严格高于当前结果时覆盖
func (p *Pipeline) mergeCLIP(result *models.ClassificationResult, score *ScoreResult) {
	if score.Score <= 0.3 || score.Score <= result.Confidence {
		return
	}
	if score.Label == "" {
		return
	}

	result.ContentCategory = score.Label
	result.Confidence = score.Score
	result.DetectionMethod = models.MethodCLIP

	if activity, ok := ClipActivityFor(score.Label); ok {
		result.ActivityType = activity
	}
}

// applyRules 基于窗口信息的规则兜底分类
// 非浏览器窗口查应用规则表分类,浏览器窗口按标题识别已知站点
func (p *Pipeline) applyRules(result *models.ClassificationResult, window *models.WindowSnapshot) {
	var appName, processName, wmClass, windowTitle string
	var isBrowser bool
	if window != nil {
		appName = window.AppName
		processName = window.ProcessName
		wmClass = window.WMClass
		windowTitle = window.WindowTitle
		isBrowser = window.IsBrowser
	}
	// 部分平台探测不到进程名,用应用名兜底匹配
	if processName == "" {
		processName = appName
	}

	det := p.appRules.Detect(processName, wmClass, windowTitle)
	titleLower := strings.ToLower(windowTitle)

	switch {
	// 浏览器按标题识别已知站点
	case isBrowser || det.IsBrowser:
		switch {
		case strings.Contains(titleLower, "youtube"):
			result.ContentType = models.ContentVideo
			result.ContentCategory = "youtube"
			if utils.ContainsAny(titleLower, []string{"tutorial", "learn", "course", "how to"}) {
				result.ActivityType = models.ActivityEducational
			} else {
				result.ActivityType = models.ActivityEntertainment
			}
		case strings.Contains(titleLower, "github"):
			result.ContentType = models.ContentCode
			result.ActivityType = models.ActivityProductive
		case utils.ContainsAny(titleLower, []string{"facebook", "twitter", "instagram", "reddit"}):
			result.ContentType = models.ContentSocialFeed
			result.ActivityType = models.ActivitySocialMedia
		}

	// 代码编辑器 / IDE
	case det.IsIDE:
		result.ContentType = models.ContentCode
		result.ActivityType = det.ActivityType
		if result.ContentCategory == "" {
			result.ContentCategory = det.Category
		}
		if result.ContentDescription == "" {
			result.ContentDescription = "Coding in " + det.AppName
		}
		if result.Confidence < 0.9 {
			result.Confidence = 0.9
		}

	// 终端
	case det.IsTerminal:
		result.ContentType = models.ContentTerminal
		result.ActivityType = models.ActivityProductive
		if result.Confidence < 0.85 {
			result.Confidence = 0.85
		}

	// 视频/音乐播放器
	case det.IsMediaPlayer:
		result.ContentType = models.ContentVideo
		result.ActivityType = models.ActivityEntertainment
		if result.ContentDescription == "" && windowTitle != "" {
			result.ContentDescription = "Watching: " + utils.TruncateString(windowTitle, 50)
		}
		if result.Confidence < 0.8 {
			result.Confidence = 0.8
		}

	// 游戏
	case det.IsGame:
		result.ActivityType = models.ActivityGaming
		if result.ContentCategory == "" {
			result.ContentCategory = det.Category
		}
		if result.Confidence < 0.8 {
			result.Confidence = 0.8
		}

	// 规则表命中的其他应用(办公、笔记、通讯等)
	case det.Confidence >= 0.9:
		result.ActivityType = det.ActivityType
		if result.ContentCategory == "" {
			result.ContentCategory = det.Category
		}
		if result.Confidence < 0.75 {
			result.Confidence = 0.75
		}
	}
}

// generateDescription 生成人类可读的活动描述
func generateDescription(result *models.ClassificationResult, appName string) string {
	category := result.ContentCategory
	categoryTitle := strings.Title(strings.ReplaceAll(category, "_", " "))

	switch result.ActivityType {
	case models.ActivityProductive:
		if result.ContentType == models.ContentCode || strings.Contains(category, "coding") {
			return "Coding in " + appName
		}
		return "Working in " + appName

	case models.ActivityEducational:
		return "Learning: " + categoryTitle

	case models.ActivityEntertainment:
		if category != "" {
			return "Watching: " + categoryTitle
		}
		return "Entertainment in " + appName

	case models.ActivitySocialMedia:
		return "Browsing social media"

	case models.ActivityGaming:
		return "Playing game"

	default:
		if appName != "" {
			return "Using " + appName
		}
		return "Unknown activity"
	}
}
