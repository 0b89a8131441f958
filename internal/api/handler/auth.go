package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/api/metrics"
	"github.com/ppfmanagement/admin-dashboard/internal/api/middleware"
	"github.com/ppfmanagement/admin-dashboard/internal/api/view"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/service"
)

// RoleSource lists the roles offered on the sign-up form.
type RoleSource interface {
	Roles(ctx context.Context) ([]domain.Role, bool)
}

// AuthHandler serves the login, registration and logout pages.
type AuthHandler struct {
	store *service.SessionStore
	roles RoleSource
	pages *Pages
	log   zerolog.Logger
}

func NewAuthHandler(store *service.SessionStore, roles RoleSource, pages *Pages, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{store: store, roles: roles, pages: pages, log: log}
}

type loginForm struct {
	EmailID  string `form:"emailId"  validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type loginPage struct {
	Email  string
	Errors FieldErrors
}

type registerPage struct {
	Fields []view.Field
}

type sessionResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Email    string `json:"email,omitempty"`
}

// Home sends visitors to the dashboard or the login page.
func (h *AuthHandler) Home(c echo.Context) error {
	if h.store.IsLoggedIn(middleware.Session(c)) {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

func (h *AuthHandler) LoginPage(c echo.Context) error {
	if h.store.IsLoggedIn(middleware.Session(c)) {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return h.pages.Render(c, http.StatusOK, "login", "Login", loginPage{Errors: FieldErrors{}})
}

// Login authenticates the credentials. On failure the login page is shown
// again with a notice; the session is not touched.
func (h *AuthHandler) Login(c echo.Context) error {
	var f loginForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&f); err != nil {
		errs, ok := AsFieldErrors(err)
		if !ok {
			return err
		}
		return h.pages.Render(c, http.StatusUnprocessableEntity, "login", "Login", loginPage{Email: f.EmailID, Errors: errs})
	}

	sess := middleware.Session(c)
	if err := h.store.Login(c.Request().Context(), sess, f.EmailID, f.Password); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		sess.Notify(domain.NoticeError, "Login failed. Check your email and password.")
		return h.pages.Render(c, http.StatusUnauthorized, "login", "Login", loginPage{Email: f.EmailID, Errors: FieldErrors{}})
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	middleware.RotateSession(c)
	sess.Notify(domain.NoticeSuccess, "Login successful.")
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	sess := middleware.Session(c)
	h.store.Logout(sess)
	sess.Notify(domain.NoticeInfo, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return h.renderRegister(c, http.StatusOK, RegisterForm{}, nil)
}

// Register creates the account and sends the visitor to the login page. It
// never logs anyone in.
func (h *AuthHandler) Register(c echo.Context) error {
	var f RegisterForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&f); err != nil {
		errs, ok := AsFieldErrors(err)
		if !ok {
			return err
		}
		return h.renderRegister(c, http.StatusUnprocessableEntity, f, errs)
	}

	sess := middleware.Session(c)
	if err := h.store.Register(c.Request().Context(), f.Registration()); err != nil {
		sess.Notify(domain.NoticeError, "Registration failed. Please try again.")
		return h.renderRegister(c, http.StatusBadGateway, f, nil)
	}
	sess.Notify(domain.NoticeSuccess, "Registration successful. Please log in.")
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

func (h *AuthHandler) renderRegister(c echo.Context, code int, f RegisterForm, errs FieldErrors) error {
	roles, ok := h.roles.Roles(c.Request().Context())
	if !ok {
		middleware.Session(c).Notify(domain.NoticeError, "Could not load roles.")
	}
	return h.pages.Render(c, code, "register", "Register", registerPage{Fields: f.Fields(errs, roles)})
}

func (h *AuthHandler) Unauthorized(c echo.Context) error {
	return h.pages.Render(c, http.StatusForbidden, "unauthorized", "Unauthorized", nil)
}

// Session reports the login state for navigation polling.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess := middleware.Session(c)
	resp := sessionResponse{LoggedIn: h.store.IsLoggedIn(sess)}
	if resp.LoggedIn {
		resp.Email = sess.Email
	}
	return c.JSON(http.StatusOK, resp)
}
