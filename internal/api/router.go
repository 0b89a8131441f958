package api

import (
	"fmt"
	"strings"
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/api/handler"
	"github.com/ppfmanagement/admin-dashboard/internal/api/middleware"
	"github.com/ppfmanagement/admin-dashboard/internal/api/view"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
	"github.com/ppfmanagement/admin-dashboard/internal/core/service"
	"github.com/ppfmanagement/admin-dashboard/internal/pkg/config"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Policy      config.RoutePolicy
	Session     middleware.SessionOptions
	Screens     handler.ScreenOptions
	LoginPerMin int

	Sessions ports.SessionRepository
	Decoder  ports.ClaimsDecoder
	Store    *service.SessionStore
	Signup   handler.RoleSource

	Clients     *service.Controller[domain.Client]
	Roles       *service.Controller[domain.Role]
	Users       *service.Controller[domain.User]
	RoleGateway ports.ResourceGateway[domain.Role]

	// Audit is nil when no audit store is configured.
	Audit  ports.AuditRepository
	Health map[string]handler.Pinger
}

// echoprometheus registers its collectors globally, so the middleware is
// built once per process.
var (
	promOnce sync.Once
	promMW   echo.MiddlewareFunc
)

func requestMetrics() echo.MiddlewareFunc {
	promOnce.Do(func() {
		promMW = echoprometheus.NewMiddleware("ppfadmin")
	})
	return promMW
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps, log zerolog.Logger) (*echo.Echo, error) {
	if d.Clients == nil || d.Roles == nil || d.Users == nil || d.RoleGateway == nil {
		return nil, fmt.Errorf("router: every resource controller is required")
	}
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	pages := handler.NewPages(d.Policy)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(pages, log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(requestMetrics())

	// --- Health (no session) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	d.Session.Skipper = func(c echo.Context) bool {
		p := c.Request().URL.Path
		return p == "/metrics" || strings.HasPrefix(p, "/health")
	}
	e.Use(middleware.Sessions(d.Sessions, d.Session, log))

	guard := func(path string) echo.MiddlewareFunc {
		return middleware.Guard(path, d.Decoder, service.NewRoleSet(d.Policy.Roles(path)...))
	}

	// --- Public pages ---
	auth := handler.NewAuthHandler(d.Store, d.Signup, pages, log.With().Str("component", "auth").Logger())
	e.GET("/", auth.Home)
	e.GET(middleware.LoginPath, auth.LoginPage)
	e.POST(middleware.LoginPath, auth.Login, middleware.LoginRateLimit(d.LoginPerMin))
	e.GET("/register", auth.RegisterPage)
	e.POST("/register", auth.Register)
	e.POST("/logout", auth.Logout)
	e.GET(middleware.UnauthorizedPath, auth.Unauthorized)
	e.GET("/api/session", auth.Session)

	// --- Guarded screens ---
	e.GET("/dashboard", handler.Dashboard(pages), guard("/dashboard"))

	handler.NewClientScreen(d.Clients, pages, d.Screens, log).Register(e.Group("/clients", guard("/clients")))
	handler.NewRoleScreen(d.Roles, pages, d.Screens, log).Register(e.Group("/roles", guard("/roles")))
	handler.NewUserScreen(d.Users, d.RoleGateway, pages, d.Screens, log).Register(e.Group("/users", guard("/users")))

	activity := handler.NewActivityHandler(d.Audit, pages, log)
	e.GET("/activity", activity.List, guard("/activity"))

	return e, nil
}
