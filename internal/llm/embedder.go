package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// OpenAIEmbedder OpenAI 兼容 /embeddings 客户端
type OpenAIEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
	maxRetries int
}

type EmbedderConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

func NewOpenAIEmbedder(cfg EmbedderConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("缺少 AI API Key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &OpenAIEmbedder{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
	}, nil
}

func (c *OpenAIEmbedder) Name() string    { return "openai:" + c.model }
func (c *OpenAIEmbedder) Dimensions() int { return c.dimensions }

func (c *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("embedding 响应为空")
	}
	return vectors[0], nil
}

func (c *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	type reqBody struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	url := c.baseURL + "/embeddings"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		data, _ := json.Marshal(reqBody{Input: texts, Model: c.model})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries && sleepCtx(ctx, retryDelay(attempt)) {
				continue
			}
			return nil, lastErr
		}

		// 限流和服务端错误可重试，其余直接失败
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("embeddings 请求失败: %s", resp.Status)
			if attempt < c.maxRetries && sleepCtx(ctx, delay) {
				continue
			}
			return nil, lastErr
		}

		if resp.StatusCode >= 300 {
			defer resp.Body.Close()
			return nil, fmt.Errorf("embeddings 请求失败: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries && sleepCtx(ctx, retryDelay(attempt)) {
				continue
			}
			return nil, lastErr
		}

		var out struct {
			Data []struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			} `json:"data"`
		}
		if err := json.Unmarshal(payload, &out); err != nil || len(out.Data) != len(texts) {
			lastErr = errors.New("embedding 响应解析失败")
			if attempt < c.maxRetries && sleepCtx(ctx, retryDelay(attempt)) {
				continue
			}
			return nil, lastErr
		}

		vectors := make([][]float32, len(texts))
		for _, d := range out.Data {
			if d.Index < 0 || d.Index >= len(vectors) {
				return nil, errors.New("embedding 响应下标越界")
			}
			vectors[d.Index] = d.Embedding
		}
		if c.dimensions == 0 && len(vectors[0]) > 0 {
			c.dimensions = len(vectors[0])
		}
		return vectors, nil
	}
	return nil, lastErr
}

// sleepCtx 可被 ctx 打断的退避；返回 false 表示 ctx 已取消
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
