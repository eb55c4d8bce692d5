package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service and the enabled swappers
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	swappers := []string{}
	if h.quotes != nil {
		swappers = h.quotes.Swappers()
	}
	sessions := 0
	if h.sessions != nil {
		sessions = h.sessions.Len()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"swappers": swappers,
		"sessions": sessions,
	})
}
