package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/squidpro/auth-system/internal/api/handler"
	"github.com/squidpro/auth-system/internal/api/middleware"
	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
	"github.com/squidpro/auth-system/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, authService ports.AuthService, roles ports.RoleResolver, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("squidpro"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService, roles)
	legacyHandler := handler.NewLegacyHandler(authService)
	authMiddleware := middleware.Auth(authService)
	sessionOnly := middleware.RequireCredential(domain.CredentialSessionToken)
	apiKeyOnly := middleware.RequireCredential(domain.CredentialLegacyAPIKey)

	// --- Auth routes ---
	e.GET("/auth/check-username", authHandler.CheckUsername)
	e.GET("/auth/check-email", authHandler.CheckEmail)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout) // idempotent, no auth required
	e.POST("/auth/logout-all", authHandler.LogoutAll, authMiddleware, sessionOnly)
	e.GET("/auth/session", authHandler.Session, authMiddleware, sessionOnly)

	// --- User routes (session token or legacy API key) ---
	e.GET("/users/me", userHandler.Me, authMiddleware)
	e.GET("/users/me/detailed", userHandler.MeDetailed, authMiddleware)
	e.POST("/users/me/roles", userHandler.GrantRole, authMiddleware)

	// --- Legacy role-scoped routes ---
	e.POST("/suppliers/register", legacyHandler.RegisterSupplier)
	e.POST("/reviewers/register", legacyHandler.RegisterReviewer)
	e.GET("/suppliers/me", userHandler.SupplierMe, authMiddleware, apiKeyOnly, middleware.RequireRole(domain.RoleSupplier))
	e.GET("/reviewers/me", userHandler.ReviewerMe, authMiddleware, apiKeyOnly, middleware.RequireRole(domain.RoleReviewer))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
