package rag

import (
	"context"
	"fmt"
	"strings"

	"consultantos/internal/llm"
	"consultantos/internal/model"
)

// ExtractedItem 模型从记录里识别出的一条待办
type ExtractedItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	OwnerType   string `json:"owner_type"` // me / client
	Priority    string `json:"priority"`   // low / medium / high / urgent
	Context     string `json:"context"`    // 原文摘录
}

// Insights 一次抽取的结果
type Insights struct {
	Summary     string          `json:"summary"`
	ActionItems []ExtractedItem `json:"action_items"`
}

// Extractor 针对会话记录做摘要 + 待办抽取。
// 与 Summarizer 一样是 best-effort：失败不阻塞会话指派。
type Extractor struct {
	gen llm.Generator
}

func NewExtractor(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen}
}

const extractSystemPrompt = `You are an assistant for an independent consultant reviewing a client session transcript. ` +
	`Produce a concise session summary and extract concrete follow-up action items (commitments, promises, next steps). ` +
	`Respond with JSON only, using exactly this shape: ` +
	`{"summary": string, "action_items": [{"title": string, "description": string, "owner": string, ` +
	`"owner_type": "me"|"client", "priority": "low"|"medium"|"high"|"urgent", "context": string}]}`

func (e *Extractor) Extract(ctx context.Context, transcript, sessionTitle string) (*Insights, error) {
	var b strings.Builder
	if sessionTitle != "" {
		fmt.Fprintf(&b, "Session: %s\n\n", sessionTitle)
	}
	fmt.Fprintf(&b, "Transcript:\n%s", transcript)

	reply, err := e.gen.Generate(ctx, extractSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("洞察抽取失败: %w", err)
	}

	var ins Insights
	if err := decodeModelJSON(reply, &ins); err != nil {
		return nil, fmt.Errorf("洞察解析失败: %w", err)
	}

	// 模型字段不可信，落库前归一化
	items := ins.ActionItems[:0]
	for _, it := range ins.ActionItems {
		it.Title = strings.TrimSpace(it.Title)
		if it.Title == "" {
			continue
		}
		switch it.OwnerType {
		case "me", "client":
		default:
			it.OwnerType = "me"
		}
		switch it.Priority {
		case model.TaskPriorityLow, model.TaskPriorityMedium,
			model.TaskPriorityHigh, model.TaskPriorityUrgent:
		default:
			it.Priority = model.TaskPriorityMedium
		}
		items = append(items, it)
	}
	ins.ActionItems = items
	return &ins, nil
}
