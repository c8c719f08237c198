package handler

import (
	"school-points-backend/internal/adapter/http/middleware"
	redisStore "school-points-backend/internal/adapter/storage/redis"
	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	AwardSvc       ports.AwardService
	ReportingSvc   ports.ReportingService
	StoreSvc       ports.StoreService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register-student", rl("auth_register"), authHandler.RegisterStudent)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	teacherOnly := middleware.RequireRole(domain.RoleTeacher)

	users := v1.Group("/users", jwtAuth)
	{
		users.GET("/me", authHandler.Me)
	}

	studentHandler := NewStudentHandler(deps.AwardSvc)
	students := v1.Group("/students", jwtAuth)
	{
		students.POST("/scan-qr", rl("award"), studentHandler.ScanQR)
		students.POST("/award-points", rl("award"), studentHandler.AwardPoints)
	}

	teacherHandler := NewTeacherHandler(deps.ReportingSvc)
	teacher := v1.Group("/teacher", jwtAuth, teacherOnly)
	{
		teacher.GET("/stats", rl("dashboard"), teacherHandler.Stats)
		teacher.GET("/recent-transactions", rl("dashboard"), teacherHandler.RecentTransactions)
	}

	activityHandler := NewActivityHandler(deps.ReportingSvc)
	v1.GET("/recent-activity", jwtAuth, rl("dashboard"), activityHandler.RecentActivity)

	storeHandler := NewStoreHandler(deps.StoreSvc)
	products := v1.Group("/products", jwtAuth)
	{
		products.GET("", rl("store"), storeHandler.ListProducts)
		products.GET("/:id", rl("store"), storeHandler.GetProduct)
	}
	orders := v1.Group("/orders", jwtAuth)
	{
		orders.POST("", rl("store"), storeHandler.Checkout)
		orders.GET("", rl("store"), storeHandler.ListOrders)
	}

	return r
}
