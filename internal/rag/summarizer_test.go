package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeGenerator 固定回复的 Generator，顺便记录收到的 prompt
type fakeGenerator struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestSummarizeParsesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"what_it_is\": \"季度复盘纪要\", " +
		"\"why_it_matters\": \"决定了下季度预算\", " +
		"\"key_insights\": [\"预算超支 12%\"], " +
		"\"suggested_uses\": [\"下次提案引用\"]}\n```"}
	s := NewSummarizer(gen)

	sum, err := s.Summarize(context.Background(), SummarizeRequest{
		Content:    "会议内容……",
		SourceName: "Q3 复盘",
		SourceType: "session_transcript",
		ClientName: "Acme",
	})

	assert.NoError(t, err)
	assert.Equal(t, "季度复盘纪要", sum.WhatItIs)
	assert.Equal(t, []string{"预算超支 12%"}, sum.KeyInsights)
	assert.False(t, sum.GeneratedAt.IsZero())
	assert.Contains(t, gen.lastUser, "Q3 复盘")
	assert.Contains(t, gen.lastUser, "Client: Acme")
}

func TestSummarizeTruncatesLongContent(t *testing.T) {
	gen := &fakeGenerator{reply: `{"what_it_is": "x", "why_it_matters": "y"}`}
	s := NewSummarizer(gen)

	long := strings.Repeat("a", summarizeContentLimit) + "TAIL_MARKER"
	_, err := s.Summarize(context.Background(), SummarizeRequest{
		Content:    long,
		SourceName: "big",
		SourceType: "document",
	})

	assert.NoError(t, err)
	assert.NotContains(t, gen.lastUser, "TAIL_MARKER")
}

func TestSummarizeGeneratorError(t *testing.T) {
	s := NewSummarizer(&fakeGenerator{err: errors.New("rate limited")})
	_, err := s.Summarize(context.Background(), SummarizeRequest{Content: "x", SourceName: "n"})
	assert.Error(t, err)
}

func TestSummarizeGarbageReply(t *testing.T) {
	s := NewSummarizer(&fakeGenerator{reply: "抱歉，我无法处理这个请求。"})
	_, err := s.Summarize(context.Background(), SummarizeRequest{Content: "x", SourceName: "n"})
	assert.Error(t, err)
}
