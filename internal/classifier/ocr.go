package classifier

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/utils"
)

// langIndicators 编程语言关键字表,按顺序匹配,命中即停
var langIndicators = []struct {
	Language string
	Keywords []string
}{
	{"python", []string{"import ", "def ", "class ", "print(", "self.", "elif ", "python"}},
	{"javascript", []string{"function ", "const ", "let ", "var ", "=>", "console."}},
	{"java", []string{"public static", "void main", "system.out", "import java"}},
	{"cpp", []string{"#include", "std::", "cout", "cin", "template<"}},
	{"html", []string{"<html", "<div", "<span", "<script", "<!doctype"}},
	{"css", []string{"font-size:", "margin:", "padding:", "@media"}},
	{"sql", []string{"select ", "from ", "where ", "insert ", "update "}},
}

var urlInTextRe = regexp.MustCompile(`https?://|www\.`)

// TextAnalysis OCR 文本分析结果
type TextAnalysis struct {
	FullText            string
	TextLength          int
	WordCount           int
	Keywords            []string
	ProgrammingLanguage string // 检测到的编程语言,无则为空
	HasCode             bool
	HasURL              bool
	Suggestions         []string // 内容提示: coding / tutorial / video / entertainment
}

// OCRAnalyzer 基于 tesseract 命令行的 OCR 文本提取与分析
type OCRAnalyzer struct {
	tesseractPath string
	timeout       time.Duration
	minTextLength int
}

// NewOCRAnalyzer 创建 OCR 分析器
// tesseract 不在 PATH 中时 Available() 返回 false,提取直接跳过
func NewOCRAnalyzer(timeoutSeconds, minTextLength int) *OCRAnalyzer {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		logger.Warn("未找到 tesseract,OCR 功能不可用: %v", err)
		path = ""
	}

	if timeoutSeconds <= 0 {
		timeoutSeconds = 5
	}

	return &OCRAnalyzer{
		tesseractPath: path,
		timeout:       time.Duration(timeoutSeconds) * time.Second,
		minTextLength: minTextLength,
	}
}

// Available 检查 tesseract 是否可用
func (a *OCRAnalyzer) Available() bool {
	return a.tesseractPath != ""
}

// ExtractText 从截图中提取文本
// 通过 stdin/stdout 调用 tesseract,超时后终止进程
func (a *OCRAnalyzer) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if !a.Available() {
		return "", nil
	}
	if img == nil {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var input bytes.Buffer
	if err := png.Encode(&input, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.tesseractPath, "stdin", "stdout", "--oem", "3", "--psm", "6")
	cmd.Stdin = &input

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("ocr timed out after %s", a.timeout)
		}
		return "", fmt.Errorf("tesseract failed: %w", err)
	}

	return utils.CleanText(string(output)), nil
}

// AnalyzeText 分析提取的文本,检测编程语言和内容提示
// 文本过短时返回 nil
func (a *OCRAnalyzer) AnalyzeText(text string) *TextAnalysis {
	minLen := a.minTextLength
	if minLen < 3 {
		minLen = 3
	}
	if len(text) < minLen {
		return nil
	}

	text = utils.CleanText(text)
	lower := strings.ToLower(text)

	analysis := &TextAnalysis{
		FullText:   utils.TruncateString(text, 500),
		TextLength: len(text),
		WordCount:  len(strings.Fields(text)),
		Keywords:   utils.ExtractKeywords(text, 3),
		HasURL:     urlInTextRe.MatchString(text),
	}

	for _, ind := range langIndicators {
		if utils.ContainsAny(lower, ind.Keywords) {
			analysis.ProgrammingLanguage = ind.Language
			analysis.HasCode = true
			break
		}
	}

	if analysis.HasCode {
		analysis.Suggestions = append(analysis.Suggestions, "coding")
	}
	if utils.ContainsAny(lower, []string{"tutorial", "learn", "how to", "guide", "course"}) {
		analysis.Suggestions = append(analysis.Suggestions, "tutorial")
	}
	if utils.ContainsAny(lower, []string{"subscribe", "like", "comment", "share", "views"}) {
		analysis.Suggestions = append(analysis.Suggestions, "video")
	}
	if utils.ContainsAny(lower, []string{"episode", "season", "series", "anime"}) {
		analysis.Suggestions = append(analysis.Suggestions, "entertainment")
	}

	return analysis
}

// HasSuggestion 检查是否包含指定提示
func (t *TextAnalysis) HasSuggestion(s string) bool {
	if t == nil {
		return false
	}
	for _, sug := range t.Suggestions {
		if sug == s {
			return true
		}
	}
	return false
}
