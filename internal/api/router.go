package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/api/handler"
	"github.com/propertyhub/identity-core/internal/api/middleware"
	"github.com/propertyhub/identity-core/internal/api/response"
	"github.com/propertyhub/identity-core/internal/core/domain"
	"github.com/propertyhub/identity-core/internal/core/ports"
)

// ProtectedRoute is a resource endpoint owned by a collaborator package. The
// router wraps Handler in the request gate; an empty Roles admits any
// authenticated identity.
type ProtectedRoute struct {
	Method  string
	Path    string
	Roles   []domain.Role
	Handler echo.HandlerFunc
}

// Deps are the collaborators the router wires together.
type Deps struct {
	Auth       ports.AuthService
	Identities ports.IdentityService
	Tokens     ports.TokenVerifier
	Readiness  map[string]handler.Pinger
	Routes     []ProtectedRoute
	Log        zerolog.Logger
	// Metrics mounts echoprometheus and GET /metrics when true.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	if d.Metrics {
		e.Use(echoprometheus.NewMiddleware("identity"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/signin", authHandler.Signin)

	// --- Authenticated routes ---
	userHandler := handler.NewUserHandler(d.Identities)
	e.GET("/api/users/me", userHandler.Me, middleware.Protect(d.Tokens, d.Log)...)

	for _, r := range d.Routes {
		e.Add(r.Method, r.Path, r.Handler, middleware.Protect(d.Tokens, d.Log, r.Roles...)...)
	}

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)

	return e
}
