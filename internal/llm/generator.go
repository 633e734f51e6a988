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

// OpenAIGenerator OpenAI 兼容 /chat/completions 客户端
type OpenAIGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

type GeneratorConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewOpenAIGenerator(cfg GeneratorConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("缺少 AI API Key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 90 * time.Second
	}
	return &OpenAIGenerator{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 3,
	}, nil
}

func (c *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string    `json:"model"`
		Messages    []message `json:"messages"`
		Temperature float64   `json:"temperature"`
	}

	body := reqBody{
		Model:       c.model,
		Temperature: 0.2,
	}
	if systemPrompt != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: systemPrompt})
	}
	body.Messages = append(body.Messages, message{Role: "user", Content: userPrompt})

	url := c.baseURL + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		data, _ := json.Marshal(body)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries && sleepCtx(ctx, retryDelay(attempt)) {
				continue
			}
			return "", lastErr
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("chat completions 请求失败: %s", resp.Status)
			if attempt < c.maxRetries && sleepCtx(ctx, delay) {
				continue
			}
			return "", lastErr
		}

		if resp.StatusCode >= 300 {
			defer resp.Body.Close()
			return "", fmt.Errorf("chat completions 请求失败: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries && sleepCtx(ctx, retryDelay(attempt)) {
				continue
			}
			return "", lastErr
		}

		var out struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(payload, &out); err != nil || len(out.Choices) == 0 {
			lastErr = errors.New("chat 响应解析失败")
			if attempt < c.maxRetries && sleepCtx(ctx, retryDelay(attempt)) {
				continue
			}
			return "", lastErr
		}
		return out.Choices[0].Message.Content, nil
	}
	return "", lastErr
}
