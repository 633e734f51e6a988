package model

import "time"

// Session 一次客户会话，通常由 TranscriptUpload 指派产生
type Session struct {
	BaseModel
	OwnerID  uint `gorm:"index;not null" json:"owner_id"`
	ClientID uint `gorm:"index;not null" json:"client_id"`

	Title           string     `gorm:"size:255" json:"title"`
	Date            *time.Time `json:"date"`
	DurationMinutes int        `json:"duration_minutes"`
	Notes           string     `gorm:"type:text" json:"notes"`

	// LLM 抽取的会话摘要 (best-effort，失败保持为空)
	Summary string `gorm:"type:text" json:"summary"`

	// 回链暂存记录
	TranscriptUploadID *uint `gorm:"index" json:"transcript_upload_id"`
}
