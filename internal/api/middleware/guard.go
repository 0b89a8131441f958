package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ppfmanagement/admin-dashboard/internal/api/metrics"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
	"github.com/ppfmanagement/admin-dashboard/internal/core/service"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// Guard admits the request only when the session token decodes to a role in
// allowed. Pages are redirected; JSON callers get 401/403.
func Guard(screen string, decoder ports.ClaimsDecoder, allowed service.RoleSet) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := service.Authorize(decoder, Session(c), allowed)
			metrics.GuardDecisionsTotal.WithLabelValues(screen, d.String()).Inc()

			switch d {
			case service.Allow:
				return next(c)
			case service.RedirectLogin:
				if WantsJSON(c) {
					return echo.NewHTTPError(http.StatusUnauthorized, "login required")
				}
				return c.Redirect(http.StatusSeeOther, LoginPath)
			default:
				if WantsJSON(c) {
					return echo.NewHTTPError(http.StatusForbidden, "forbidden")
				}
				return c.Redirect(http.StatusSeeOther, UnauthorizedPath)
			}
		}
	}
}

// WantsJSON reports whether the client asked for a JSON response.
func WantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
