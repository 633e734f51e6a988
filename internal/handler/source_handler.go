package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"consultantos/internal/dto"
	"consultantos/internal/service"
)

type SourceHandler struct {
	svc *service.SourceService
}

func NewSourceHandler(svc *service.SourceService) *SourceHandler {
	return &SourceHandler{svc: svc}
}

// Create 创建来源 (粘贴/抓取文本)
// POST /api/v1/sources
func (h *SourceHandler) Create(c *gin.Context) {
	var req dto.CreateSourceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.GetUint("userID")

	source, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": source})
}

// Upload 上传文件来源
// POST /api/v1/sources/upload
// Form-Data: file=BINARY, content=抽取好的纯文本, client_id=1 (可选)
func (h *SourceHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请上传文件"})
		return
	}

	var clientID *uint
	if s := c.PostForm("client_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "client_id 格式错误"})
			return
		}
		v := uint(id)
		clientID = &v
	}

	userID := c.GetUint("userID")
	source, err := h.svc.Upload(c.Request.Context(), userID, file, clientID, c.PostForm("content"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":     source.ID,
		"name":   source.Name,
		"status": source.Status,
	}})
}

// Get 查询单个来源 (轮询状态就打这个接口)
// GET /api/v1/sources/:id?include_chunks=true
func (h *SourceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	includeChunks := c.Query("include_chunks") == "true"

	resp, err := h.svc.Get(c.Request.Context(), c.GetUint("userID"), id, includeChunks)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// List 列出来源
// GET /api/v1/sources?client_id=1
func (h *SourceHandler) List(c *gin.Context) {
	var clientID *uint
	if s := c.Query("client_id"); s != "" {
		if id, err := strconv.Atoi(s); err == nil {
			v := uint(id)
			clientID = &v
		}
	}

	list, err := h.svc.List(c.Request.Context(), c.GetUint("userID"), clientID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Patch 编辑摘要 / 手动重置状态 (kill)
// PATCH /api/v1/sources/:id
func (h *SourceHandler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.PatchSourceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source, err := h.svc.Update(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": source})
}

// Reprocess 强制重跑流水线
// POST /api/v1/sources/:id/reprocess
func (h *SourceHandler) Reprocess(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	source, err := h.svc.Reprocess(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": source})
}

// Delete 删除来源，级联删切块
// DELETE /api/v1/sources/:id
func (h *SourceHandler) Delete(c *gin.Context) {
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

// parseID 解析路径参数 :id
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id 格式错误"})
		return 0, false
	}
	return uint(id), true
}
