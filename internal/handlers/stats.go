package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/services"
)

type StatsHandler struct {
	stats *services.StatsService
}

func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats returns dashboard statistics for the caller's scope
func (h *StatsHandler) GetStats(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.stats.GetStats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
