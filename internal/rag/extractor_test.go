package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"consultantos/internal/model"
)

func TestExtractParsesActionItems(t *testing.T) {
	gen := &fakeGenerator{reply: `Here is the result:
{"summary": "聊了网站改版范围和报价", "action_items": [
  {"title": "发送正式报价", "description": "按会上口径整理", "owner": "我", "owner_type": "me", "priority": "high", "context": "\"周五前我把报价发给你\""},
  {"title": "提供品牌素材", "owner": "客户", "owner_type": "client", "priority": "medium", "context": "\"素材我们下周给\""}
]}`}
	e := NewExtractor(gen)

	ins, err := e.Extract(context.Background(), "记录全文……", "网站改版启动会")

	assert.NoError(t, err)
	assert.Equal(t, "聊了网站改版范围和报价", ins.Summary)
	assert.Len(t, ins.ActionItems, 2)
	assert.Equal(t, "发送正式报价", ins.ActionItems[0].Title)
	assert.Equal(t, "client", ins.ActionItems[1].OwnerType)
	assert.Contains(t, gen.lastUser, "网站改版启动会")
}

func TestExtractNormalizesBadFields(t *testing.T) {
	gen := &fakeGenerator{reply: `{"summary": "s", "action_items": [
  {"title": "  ", "priority": "high"},
  {"title": "valid item", "owner_type": "robot", "priority": "critical"}
]}`}
	e := NewExtractor(gen)

	ins, err := e.Extract(context.Background(), "t", "")

	assert.NoError(t, err)
	// 空标题的条目被丢弃，非法枚举值回落到默认
	assert.Len(t, ins.ActionItems, 1)
	assert.Equal(t, "valid item", ins.ActionItems[0].Title)
	assert.Equal(t, "me", ins.ActionItems[0].OwnerType)
	assert.Equal(t, model.TaskPriorityMedium, ins.ActionItems[0].Priority)
}

func TestExtractNoActionItems(t *testing.T) {
	gen := &fakeGenerator{reply: `{"summary": "闲聊，没有待办", "action_items": []}`}
	e := NewExtractor(gen)

	ins, err := e.Extract(context.Background(), "t", "")
	assert.NoError(t, err)
	assert.Empty(t, ins.ActionItems)
}

func TestDecodeModelJSONWithProse(t *testing.T) {
	var out struct {
		A string `json:"a"`
	}
	err := decodeModelJSON("Sure! Here you go: {\"a\": \"b\"} hope that helps", &out)
	assert.NoError(t, err)
	assert.Equal(t, "b", out.A)

	err = decodeModelJSON("no json here", &out)
	assert.Error(t, err)
}
