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
	"ContentTrackerAI/pkg/models"
)

// clipActivityMap CLIP 分类标签到活动类型的映射
var clipActivityMap = map[string]models.ActivityType{
	"tutorial":     models.ActivityEducational,
	"coding":       models.ActivityProductive,
	"documentary":  models.ActivityEducational,
	"gaming":       models.ActivityGaming,
	"anime":        models.ActivityEntertainment,
	"cartoon":      models.ActivityEntertainment,
	"music_video":  models.ActivityEntertainment,
	"movie_series": models.ActivityEntertainment,
	"comedy":       models.ActivityEntertainment,
	"vlog":         models.ActivityEntertainment,
	"live_stream":  models.ActivityEntertainment,
	"social_feed":  models.ActivitySocialMedia,
	"news":         models.ActivityNews,
	"sports":       models.ActivityEntertainment,
	"adult":        models.ActivityAdult,
}

// ClipActivityFor 查找 CLIP 标签对应的活动类型
func ClipActivityFor(label string) (models.ActivityType, bool) {
	a, ok := clipActivityMap[label]
	return a, ok
}

// CLIPScorer 基于远端 CLIP 服务的内容分类打分器
// 服务接收 base64 JPEG,返回 {"classification": "...", "confidence": 0.x}
type CLIPScorer struct {
	endpoint string
	client   *http.Client
}

// NewCLIPScorer 创建 CLIP 打分器,endpoint 为空时不可用
func NewCLIPScorer(endpoint string) *CLIPScorer {
	return &CLIPScorer{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name 打分器名称
func (s *CLIPScorer) Name() string {
	return "clip"
}

// Available 是否已配置
func (s *CLIPScorer) Available() bool {
	return s.endpoint != ""
}

// Warm 预热,检查服务连通性
func (s *CLIPScorer) Warm(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	if err := checkEndpoint(ctx, s.client, s.endpoint); err != nil {
		logger.Warn("CLIP 服务预热失败: %v", err)
		return err
	}
	logger.Info("CLIP 服务就绪: %s", s.endpoint)
	return nil
}

// Score 调用 CLIP 服务对截图分类
func (s *CLIPScorer) Score(ctx context.Context, img image.Image) (*ScoreResult, error) {
	if !s.Available() {
		return nil, fmt.Errorf("clip scorer not configured")
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
		return nil, fmt.Errorf("clip request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("clip service returned %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Classification string  `json:"classification"`
		Confidence     float64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode clip response: %w", err)
	}

	return &ScoreResult{
		Label: out.Classification,
		Score: out.Confidence,
	}, nil
}
