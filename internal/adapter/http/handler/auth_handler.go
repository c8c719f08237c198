package handler

import (
	"net/http"
	"time"

	"school-points-backend/internal/adapter/http/dto"
	"school-points-backend/internal/adapter/http/middleware"
	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/apperror"
	"school-points-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// RegisterStudent handles POST /api/v1/auth/register-student.
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	svcReq := ports.RegisterStudentRequest{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      domain.Gender(req.Gender),
		PhoneNumber: req.PhoneNumber,
	}
	if req.Birthday != "" {
		bd, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			response.Error(c, apperror.Validation("Birthday must be YYYY-MM-DD"))
			return
		}
		svcReq.Birthday = &bd
	}

	account, err := h.authSvc.RegisterStudent(c.Request.Context(), svcReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RegisterStudentResponse{
		ID:       account.ID.String(),
		Username: account.Username,
		QRCode:   account.QRCode,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:    result.Token,
		Expiry:   result.Expiry.Unix(),
		Username: result.Username,
		UserType: string(result.Role),
	})
}

// Me handles GET /api/v1/users/me.
func (h *AuthHandler) Me(c *gin.Context) {
	id := accountID(c)

	account, err := h.authSvc.GetAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AccountResponse{
		ID:          account.ID.String(),
		Username:    account.Username,
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Gender:      string(account.Gender),
		PhoneNumber: account.PhoneNumber,
		Role:        string(account.Role),
		QRCode:      account.QRCode,
		Status:      account.Status(),
	})
}

// accountID pulls the authenticated account ID set by the JWT middleware.
func accountID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(middleware.CtxAccountID)
	id, _ := v.(uuid.UUID)
	return id
}

// HealthCheck handles GET /health, verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
