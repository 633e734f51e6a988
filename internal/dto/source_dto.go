package dto

import "consultantos/internal/model"

// CreateSourceReq 创建来源 (粘贴文本 / 网页抓取结果 / 邮件正文等，
// 文本抽取在外部完成，这里收到的已经是纯文本)
type CreateSourceReq struct {
	ClientID *uint  `json:"client_id"`
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=document website repository image session_transcript session_notes recording other"`
	Content  string `json:"content"`
	URL      string `json:"url"`
	FileType string `json:"file_type"`

	Metadata map[string]interface{} `json:"metadata"`
}

// PatchSourceReq 编辑摘要 / 手动重置状态
// Action: "edit_summary" 或 "kill"
type PatchSourceReq struct {
	Action string `json:"action" binding:"required,oneof=edit_summary kill"`

	// edit_summary
	Summary *model.AISummary `json:"summary"`

	// kill: 把卡死的 processing 强制改成目标状态
	TargetStatus string `json:"target_status" binding:"omitempty,oneof=pending completed"`
}

type SourceResp struct {
	Source *model.Source `json:"source"`
	Chunks []model.Chunk `json:"chunks,omitempty"`
}
