package model

import "time"

const (
	TranscriptStatusInbox    = "inbox"
	TranscriptStatusAssigned = "assigned"
	TranscriptStatusArchived = "archived"
)

// TranscriptUpload 粘贴/上传的会话记录暂存区，等待指派到客户会话
type TranscriptUpload struct {
	BaseModel
	OwnerID uint `gorm:"index;not null" json:"owner_id"`

	Title   string `gorm:"size:255" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`

	SessionDate     *time.Time `json:"session_date"`
	DurationMinutes int        `json:"duration_minutes"`
	Notes           string     `gorm:"type:text" json:"notes"`

	SourceType string `gorm:"size:20;default:'paste'" json:"source_type"` // paste, upload

	// 状态: inbox -> assigned / archived
	Status string `gorm:"default:'inbox';index" json:"status"`

	// 指派后回填
	ClientID  *uint `gorm:"index" json:"client_id"`
	SessionID *uint `gorm:"index" json:"session_id"`
}
