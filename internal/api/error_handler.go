package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/api/handler"
	"github.com/ppfmanagement/admin-dashboard/internal/api/middleware"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type errorPage struct {
	Code    int
	Title   string
	Message string
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps known domain
// errors to status codes and renders the error page, or a JSON envelope for
// JSON callers. Unexpected errors are logged and never leaked.
func NewHTTPErrorHandler(pages *handler.Pages, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		if wantsJSON(c) {
			resp := errorResponse{Error: msg}
			if fe, ok := handler.AsFieldErrors(err); ok {
				resp.Fields = fe
			}
			_ = c.JSON(code, resp)
			return
		}

		if rerr := pages.Render(c, code, "error", http.StatusText(code), errorPage{
			Code:    code,
			Title:   http.StatusText(code),
			Message: msg,
		}); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			_ = c.String(code, msg)
		}
	}
}

func wantsJSON(c echo.Context) bool {
	p := c.Request().URL.Path
	return middleware.WantsJSON(c) || strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health")
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if _, ok := handler.AsFieldErrors(err); ok {
		return http.StatusUnprocessableEntity, "invalid form"
	}

	switch {
	case errors.Is(err, domain.ErrNotPendingDelete):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, domain.ErrNotLoaded):
		return http.StatusNotFound, "record not found"
	case errors.Is(err, domain.ErrLoginFailed), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "login required"
	case errors.Is(err, domain.ErrRequestFailed), errors.Is(err, domain.ErrRegistrationFailed):
		return http.StatusBadGateway, "the server could not complete the request"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
