package handler

import (
	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// ActivityHandler handles the shared recent-activity feed.
type ActivityHandler struct {
	reportingSvc ports.ReportingService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(reportingSvc ports.ReportingService) *ActivityHandler {
	return &ActivityHandler{reportingSvc: reportingSvc}
}

// RecentActivity handles GET /api/v1/recent-activity. It always returns
// the caller's own ledger, never another account's.
func (h *ActivityHandler) RecentActivity(c *gin.Context) {
	entries, err := h.reportingSvc.RecentActivity(c.Request.Context(), accountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"activities": entries})
}
