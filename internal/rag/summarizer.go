package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"consultantos/internal/llm"
	"consultantos/internal/model"
)

// 摘要时送给模型的内容上限 (rune)，超长内容截断即可，
// 摘要不需要全文
const summarizeContentLimit = 12000

// SummarizeRequest 摘要上下文
type SummarizeRequest struct {
	Content    string
	SourceName string
	SourceType string
	FileType   string
	ClientName string
}

// Summarizer 调用 LLM 生成结构化摘要。
// 属于 best-effort 增强：失败由调用方记日志并吞掉，不影响主流程。
type Summarizer struct {
	gen llm.Generator
}

func NewSummarizer(gen llm.Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

const summarizeSystemPrompt = `You are an assistant for an independent consultant. ` +
	`Summarize the given source material. Respond with JSON only, no prose, using exactly this shape: ` +
	`{"what_it_is": string, "why_it_matters": string, "key_insights": [string], "suggested_uses": [string]}`

func (s *Summarizer) Summarize(ctx context.Context, req SummarizeRequest) (*model.AISummary, error) {
	content := req.Content
	if runes := []rune(content); len(runes) > summarizeContentLimit {
		content = string(runes[:summarizeContentLimit])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Source name: %s\n", req.SourceName)
	fmt.Fprintf(&b, "Source type: %s\n", req.SourceType)
	if req.FileType != "" {
		fmt.Fprintf(&b, "File type: %s\n", req.FileType)
	}
	if req.ClientName != "" {
		fmt.Fprintf(&b, "Client: %s\n", req.ClientName)
	}
	fmt.Fprintf(&b, "\nContent:\n%s", content)

	reply, err := s.gen.Generate(ctx, summarizeSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("摘要生成失败: %w", err)
	}

	var sum model.AISummary
	if err := decodeModelJSON(reply, &sum); err != nil {
		return nil, fmt.Errorf("摘要解析失败: %w", err)
	}
	sum.GeneratedAt = time.Now()
	return &sum, nil
}
