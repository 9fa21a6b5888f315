package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
)

// Scorer 图像打分器接口
// CLIP 分类和 NSFW 检测等远端模型服务实现该接口
type Scorer interface {
	// Name 打分器名称,用于日志
	Name() string
	// Available 是否已配置可用
	Available() bool
	// Warm 预热(检查服务连通性),失败不影响后续调用
	Warm(ctx context.Context) error
	// Score 对截图打分
	Score(ctx context.Context, img image.Image) (*ScoreResult, error)
}

// ScoreResult 打分结果
type ScoreResult struct {
	Label string  `json:"label"` // 分类标签(NSFW 检测无标签)
	Score float64 `json:"score"` // 置信度/分值 0-1
}

// encodeJPEGBase64 将截图编码为 base64 JPEG,供远端服务调用
func encodeJPEGBase64(img image.Image, quality int) (string, error) {
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// checkEndpoint 探测服务端点连通性
func checkEndpoint(ctx context.Context, client *http.Client, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("endpoint unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
