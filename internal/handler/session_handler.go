package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"consultantos/internal/service"
)

type SessionHandler struct {
	svc *service.SessionService
}

func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// List 会话列表
// GET /api/v1/sessions?client_id=1
func (h *SessionHandler) List(c *gin.Context) {
	var clientID *uint
	if s := c.Query("client_id"); s != "" {
		if id, err := strconv.Atoi(s); err == nil {
			v := uint(id)
			clientID = &v
		}
	}

	sessions, err := h.svc.List(c.Request.Context(), c.GetUint("userID"), clientID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions})
}

// Get 单个会话 (含抽取的摘要)
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	session, err := h.svc.Get(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}
