package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"consultantos/internal/service"
)

type SearchHandler struct {
	svc *service.SearchService
}

func NewSearchHandler(svc *service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// RagSearch 相似检索调试接口
// GET /api/v1/debug/rag-search?query=xxx&client_id=1&limit=5
func (h *SearchHandler) RagSearch(c *gin.Context) {
	query := c.Query("query")

	var clientID *uint
	if s := c.Query("client_id"); s != "" {
		if id, err := strconv.Atoi(s); err == nil {
			v := uint(id)
			clientID = &v
		}
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	results, err := h.svc.Search(c.Request.Context(), c.GetUint("userID"), query, clientID, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}
