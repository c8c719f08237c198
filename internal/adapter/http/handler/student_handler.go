package handler

import (
	"school-points-backend/internal/adapter/http/dto"
	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/apperror"
	"school-points-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StudentHandler handles the QR scan and award endpoints.
type StudentHandler struct {
	awardSvc ports.AwardService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(awardSvc ports.AwardService) *StudentHandler {
	return &StudentHandler{awardSvc: awardSvc}
}

// ScanQR handles POST /api/v1/students/scan-qr.
func (h *StudentHandler) ScanQR(c *gin.Context) {
	var req dto.ScanQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("QR value is required"))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.awardSvc.ResolveQR(c.Request.Context(), req.QRValue)
	if err != nil {
		response.Error(c, err)
		return
	}

	a := result.Account
	response.OK(c, dto.StudentScanResponse{
		ID:       a.ID.String(),
		Username: a.Username,
		Name:     a.DisplayName(),
		Email:    a.Email,
		Gender:   string(a.Gender),
		Balance:  result.Balance,
		Avatar:   a.Avatar(),
		Status:   a.Status(),
		Level:    result.Level,
		Streak:   result.Streak,
		QRValue:  a.QRCode,
	})
}

// AwardPoints handles POST /api/v1/students/award-points.
func (h *StudentHandler) AwardPoints(c *gin.Context) {
	var req dto.AwardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		response.Error(c, apperror.Validation("Student not found"))
		return
	}

	result, err := h.awardSvc.AwardPoints(c.Request.Context(), ports.AwardRequest{
		RequesterID: accountID(c),
		StudentID:   studentID,
		Points:      req.Points,
		Reason:      req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AwardPointsResponse{
		Success:    true,
		Message:    result.Message,
		NewBalance: result.NewBalance,
		Transaction: dto.TransactionResponse{
			ID:              result.Entry.ID.String(),
			TransactionType: string(result.Entry.Kind),
			Amount:          result.Entry.Amount,
			Description:     result.Entry.Description,
			Time:            result.Entry.CreatedAt.Format("2006-01-02 15:04:05"),
		},
	})
}
