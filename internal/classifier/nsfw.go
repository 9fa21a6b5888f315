package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"ContentTrackerAI/pkg/logger"
)

// NSFWScorer 基于远端 NSFW 检测服务的打分器
// 服务接收 base64 JPEG,返回 {"nsfw_score": 0.x}
type NSFWScorer struct {
	endpoint string
	client   *http.Client
}

// NewNSFWScorer 创建 NSFW 打分器,endpoint 为空时不可用
func NewNSFWScorer(endpoint string) *NSFWScorer {
	return &NSFWScorer{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name 打分器名称
func (s *NSFWScorer) Name() string {
	return "nsfw"
}

// Available 是否已配置
func (s *NSFWScorer) Available() bool {
	return s.endpoint != ""
}

// Warm 预热,检查服务连通性
func (s *NSFWScorer) Warm(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	if err := checkEndpoint(ctx, s.client, s.endpoint); err != nil {
		logger.Warn("NSFW 服务预热失败: %v", err)
		return err
	}
	logger.Info("NSFW 服务就绪: %s", s.endpoint)
	return nil
}

// Score 调用 NSFW 服务计算分值
func (s *NSFWScorer) Score(ctx context.Context, img image.Image) (*ScoreResult, error) {
	if !s.Available() {
		return nil, fmt.Errorf("nsfw scorer not configured")
	}

	encoded, err := encodeJPEGBase64(img, 80)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"image": encoded})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nsfw request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nsfw service returned %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		NSFWScore float64 `json:"nsfw_score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode nsfw response: %w", err)
	}

	return &ScoreResult{Score: out.NSFWScore}, nil
}
