// Package llm 封装托管 AI 服务 (OpenAI 兼容 HTTP API)。
// 摘要/抽取走 chat completions，向量化走 embeddings，
// 索引和查询必须用同一个 embedding 模型。
package llm

import (
	"context"
	"time"
)

// Embedder 文本向量化
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}

// Generator 文本生成 (摘要 / 洞察抽取)
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// retryDelay 指数退避，上限 5s
func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
