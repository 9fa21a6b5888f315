package classifier

import (
	"image"

	"github.com/nfnt/resize"
)

// 布局类型判定阈值(边缘密度)
const (
	layoutComplexThreshold  = 0.15
	layoutModerateThreshold = 0.05

	// 分析前先缩放到该宽度,降低计算量
	analysisWidth = 320

	// 相邻像素亮度差超过该值视为边缘
	edgeThreshold = 30
)

// ImageResult 图像启发式分析结果
type ImageResult struct {
	Width       int
	Height      int
	Brightness  float64 // 平均亮度 0-255
	IsDarkTheme bool
	EdgeDensity float64
	LayoutType  string // simple / moderate / complex
}

// ImageAnalyzer 图像启发式分析器
// 通过平均亮度和边缘密度估算界面复杂度:
// 边缘稀疏的"简单"布局通常是视频播放器等全屏内容
type ImageAnalyzer struct{}

// NewImageAnalyzer 创建图像分析器
func NewImageAnalyzer() *ImageAnalyzer {
	return &ImageAnalyzer{}
}

// Analyze 分析截图,返回亮度和布局信息
func (a *ImageAnalyzer) Analyze(img image.Image) *ImageResult {
	if img == nil {
		return nil
	}

	bounds := img.Bounds()
	result := &ImageResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	// 缩小后再逐像素分析
	small := resize.Resize(analysisWidth, 0, img, resize.NearestNeighbor)
	sb := small.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if w == 0 || h == 0 {
		return result
	}

	// 灰度化
	lum := make([]uint8, w*h)
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := small.At(sb.Min.X+x, sb.Min.Y+y).RGBA()
			// 0-65535 -> 0-255
			v := uint8((299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000)
			lum[y*w+x] = v
			sum += float64(v)
		}
	}

	result.Brightness = sum / float64(w*h)
	result.IsDarkTheme = result.Brightness < 128

	// 边缘密度: 水平/垂直亮度跳变像素占比
	var edges int
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			v := int(lum[y*w+x])
			dx := v - int(lum[y*w+x+1])
			dy := v - int(lum[(y+1)*w+x])
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			if dx > edgeThreshold || dy > edgeThreshold {
				edges++
			}
		}
	}

	result.EdgeDensity = float64(edges) / float64((w-1)*(h-1))

	switch {
	case result.EdgeDensity > layoutComplexThreshold:
		result.LayoutType = "complex"
	case result.EdgeDensity > layoutModerateThreshold:
		result.LayoutType = "moderate"
	default:
		result.LayoutType = "simple"
	}

	return result
}
