package probe

import (
	"fmt"
	"time"

	"ContentTrackerAI/pkg/models"

	"github.com/kbinani/screenshot"
)

// ScreenGrabber 屏幕截取器,截取主屏幕
type ScreenGrabber struct{}

// NewScreenGrabber 创建屏幕截取器
func NewScreenGrabber() *ScreenGrabber {
	return &ScreenGrabber{}
}

// Capture 截取主屏幕
func (g *ScreenGrabber) Capture() (*models.ScreenCapture, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}

	// 主屏幕为索引 0
	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	return &models.ScreenCapture{
		Image:     img,
		Timestamp: time.Now(),
	}, nil
}

// NumDisplays 返回当前活跃屏幕数量
func (g *ScreenGrabber) NumDisplays() int {
	return screenshot.NumActiveDisplays()
}
