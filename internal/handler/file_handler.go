package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"consultantos/internal/data"
)

type FileHandler struct {
	data *data.Data
}

func NewFileHandler(d *data.Data) *FileHandler {
	return &FileHandler{data: d}
}

// Get 下载/预览原始文件
// GET /api/v1/files/:object
func (h *FileHandler) Get(c *gin.Context) {
	objectName := c.Param("object")
	if objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少文件名"})
		return
	}

	obj, size, err := h.data.GetFileStream(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		return
	}
	defer obj.Close()

	c.DataFromReader(http.StatusOK, size, "application/octet-stream", obj, nil)
}
