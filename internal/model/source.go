package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 状态机: pending -> processing -> completed / failed
// 只有用户显式 reprocess / kill 才允许回退
const (
	SourceStatusPending    = "pending"
	SourceStatusProcessing = "processing"
	SourceStatusCompleted  = "completed"
	SourceStatusFailed     = "failed"
)

// 来源类型
const (
	SourceTypeDocument   = "document"
	SourceTypeWebsite    = "website"
	SourceTypeRepository = "repository"
	SourceTypeImage      = "image"
	SourceTypeTranscript = "session_transcript"
	SourceTypeNotes      = "session_notes"
	SourceTypeRecording  = "recording"
	SourceTypeOther      = "other"
)

// AISummary 结构化摘要 (LLM 生成，可被用户手动编辑)
type AISummary struct {
	WhatItIs      string    `json:"what_it_is"`
	WhyItMatters  string    `json:"why_it_matters"`
	KeyInsights   []string  `json:"key_insights"`
	SuggestedUses []string  `json:"suggested_uses"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Source 一个被摄取的知识单元 (文件 / 网页 / 会话记录 / 邮件...)
type Source struct {
	BaseModel
	OwnerID uint `gorm:"index;not null" json:"owner_id"`

	// 归属客户；为 NULL 表示全局资料
	ClientID *uint `gorm:"index" json:"client_id"`

	Name string `gorm:"size:255;not null" json:"name"`
	Type string `gorm:"size:50;not null;index" json:"type"`

	// 原始文件信息 (文件类来源才有)
	FileName    string `gorm:"size:255" json:"file_name"`
	FileType    string `gorm:"size:50" json:"file_type"`
	FileSize    int64  `json:"file_size"`
	URL         string `gorm:"size:1024" json:"url"`
	StoragePath string `gorm:"size:512" json:"storage_path"` // minio://bucket/object

	// 抽取出的纯文本内容 (处理前可能为空)
	Content string `gorm:"type:text" json:"content"`

	// 结构化 AI 摘要 (JSON，生成失败时保持 NULL)
	Summary            datatypes.JSON `json:"summary"`
	SummaryGeneratedAt *time.Time     `json:"summary_generated_at"`
	SummaryEdited      bool           `json:"summary_edited"`

	// 状态机
	Status   string `gorm:"default:'pending';index" json:"status"`
	ErrorMsg string `json:"error_msg"`

	ChunkCount int `json:"chunk_count"`

	// 任意元数据 (例如回链 session)
	Metadata datatypes.JSON `json:"metadata"`
}

// GetSummary 解析摘要 JSON；没有摘要返回 nil
func (s *Source) GetSummary() *AISummary {
	if len(s.Summary) == 0 {
		return nil
	}
	var sum AISummary
	if err := json.Unmarshal(s.Summary, &sum); err != nil {
		return nil
	}
	return &sum
}
