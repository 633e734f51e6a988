package model

import "time"

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// 任务来源: 手动创建 / 从记录自动识别 / 笔记 / 会话记录 / 邮件
const (
	TaskSourceManual     = "manual"
	TaskSourceDetected   = "detected"
	TaskSourceNote       = "note"
	TaskSourceTranscript = "transcript"
	TaskSourceEmail      = "email"
)

// ActionItem 一条跟进任务，手动录入或由 Extractor 从记录里抽出
type ActionItem struct {
	BaseModel
	OwnerUserID uint `gorm:"index;not null" json:"owner_user_id"`
	ClientID    uint `gorm:"index;not null" json:"client_id"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Status   string `gorm:"default:'pending';index" json:"status"`
	Priority string `gorm:"default:'medium'" json:"priority"`

	// 负责人自由文本 + 负责人类型 (me / client)
	Owner     string `gorm:"size:100" json:"owner"`
	OwnerType string `gorm:"size:20;default:'me'" json:"owner_type"`

	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`

	// 来源会话 (自动抽取时回填)
	SessionID *uint `gorm:"index" json:"session_id"`

	// 父任务 (子任务必须与父任务同客户)
	ParentID *uint `gorm:"index" json:"parent_id"`

	Source        string `gorm:"size:20;default:'manual'" json:"source"`
	SourceContext string `gorm:"type:text" json:"source_context"`
}
