package dto

import "time"

type CreateTranscriptReq struct {
	Title           string     `json:"title"`
	Content         string     `json:"content" binding:"required"`
	SessionDate     *time.Time `json:"session_date"`
	DurationMinutes int        `json:"duration_minutes"`
	Notes           string     `json:"notes"`
	SourceType      string     `json:"source_type" binding:"omitempty,oneof=paste upload"`
}

// AssignTranscriptReq 把暂存记录指派到某个客户，生成 Session + Source
type AssignTranscriptReq struct {
	ClientID        uint       `json:"client_id" binding:"required"`
	Title           string     `json:"title"`
	SessionDate     *time.Time `json:"session_date"`
	DurationMinutes int        `json:"duration_minutes"`
}

type PatchTranscriptReq struct {
	Action string `json:"action" binding:"required,oneof=archive"`
}
