package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"consultantos/internal/dto"
	"consultantos/internal/service"
)

type ClientHandler struct {
	svc *service.ClientService
}

func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// Create 创建客户
// POST /api/v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.svc.Create(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": client})
}

// List 客户列表
// GET /api/v1/clients
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.svc.List(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": clients})
}

// Get 单个客户
// GET /api/v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	client, err := h.svc.Get(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": client})
}
