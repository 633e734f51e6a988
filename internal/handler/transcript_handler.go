package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"consultantos/internal/dto"
	"consultantos/internal/service"
)

type TranscriptHandler struct {
	svc *service.TranscriptService
}

func NewTranscriptHandler(svc *service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{svc: svc}
}

// Create 粘贴记录进 inbox
// POST /api/v1/transcripts
func (h *TranscriptHandler) Create(c *gin.Context) {
	var req dto.CreateTranscriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

// List 列出暂存记录
// GET /api/v1/transcripts?status=inbox
func (h *TranscriptHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.GetUint("userID"), c.Query("status"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Assign 指派到客户会话
// POST /api/v1/transcripts/:id/assign
func (h *TranscriptHandler) Assign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AssignTranscriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.svc.Assign(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

// Patch 归档
// PATCH /api/v1/transcripts/:id
func (h *TranscriptHandler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.PatchTranscriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.svc.Archive(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

// Delete 删除暂存记录
// DELETE /api/v1/transcripts/:id
func (h *TranscriptHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}
