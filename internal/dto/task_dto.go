package dto

import "time"

type CreateTaskReq struct {
	ClientID    uint       `json:"client_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Owner       string     `json:"owner"`
	OwnerType   string     `json:"owner_type" binding:"omitempty,oneof=me client"`
	DueDate     *time.Time `json:"due_date"`
	ParentID    *uint      `json:"parent_id"`
	SessionID   *uint      `json:"session_id"`
}

type PatchTaskReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Owner       *string    `json:"owner"`
	OwnerType   *string    `json:"owner_type" binding:"omitempty,oneof=me client"`
	DueDate     *time.Time `json:"due_date"`
}

type ListTasksReq struct {
	ClientID uint   `form:"client_id"`
	Status   string `form:"status" binding:"omitempty,oneof=pending in_progress completed"`
}
