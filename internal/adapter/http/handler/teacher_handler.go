package handler

import (
	"strconv"

	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// TeacherHandler handles teacher dashboard endpoints.
type TeacherHandler struct {
	reportingSvc ports.ReportingService
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(reportingSvc ports.ReportingService) *TeacherHandler {
	return &TeacherHandler{reportingSvc: reportingSvc}
}

// Stats handles GET /api/v1/teacher/stats.
func (h *TeacherHandler) Stats(c *gin.Context) {
	stats, err := h.reportingSvc.TeacherStats(c.Request.Context(), accountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// RecentTransactions handles GET /api/v1/teacher/recent-transactions.
func (h *TeacherHandler) RecentTransactions(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	scans, err := h.reportingSvc.RecentScans(c.Request.Context(), accountID(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"transactions": scans})
}
