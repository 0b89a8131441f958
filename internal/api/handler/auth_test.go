package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/service"
)

func signedToken(t *testing.T, role, user string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"RoleId": role,
		"UserId": user,
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

type stubAuth struct {
	token      string
	registered []domain.Registration
	failSignup bool
}

func (s *stubAuth) Login(_ context.Context, email, password string) (string, error) {
	if email != "admin@ppf.test" || password != "secret1" {
		return "", errors.New("status 401")
	}
	return s.token, nil
}

func (s *stubAuth) Register(_ context.Context, reg domain.Registration) error {
	if s.failSignup {
		return errors.New("status 500")
	}
	s.registered = append(s.registered, reg)
	return nil
}

type stubRoles struct {
	roles []domain.Role
	fail  bool
}

func (s stubRoles) Roles(context.Context) ([]domain.Role, bool) {
	if s.fail {
		return nil, false
	}
	return s.roles, true
}

func newAuthServer(t *testing.T, sess *domain.Session, auth *stubAuth, roles RoleSource) *echo.Echo {
	t.Helper()
	e, pages := testServer(t, sess, domain.Claims{})
	store := service.NewSessionStore(auth, service.NewJWTClaimsDecoder(), zerolog.Nop())
	h := NewAuthHandler(store, roles, pages, zerolog.Nop())
	e.GET("/", h.Home)
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)
	e.GET("/register", h.RegisterPage)
	e.POST("/register", h.Register)
	e.GET("/api/session", h.Session)
	return e
}

func TestAuth_LoginStoresIdentity(t *testing.T) {
	sess := domain.NewSession("anon")
	auth := &stubAuth{token: signedToken(t, "1", "7")}
	e := newAuthServer(t, sess, auth, stubRoles{})

	requireRedirect(t, do(e, http.MethodGet, "/", nil), "/login")

	rec := do(e, http.MethodPost, "/login", url.Values{"emailId": {"admin@ppf.test"}, "password": {"secret1"}})
	requireRedirect(t, rec, "/dashboard")

	require.Equal(t, auth.token, sess.Token)
	require.Equal(t, 1, sess.RoleID)
	require.Equal(t, 7, sess.UserID)
	require.Equal(t, "admin@ppf.test", sess.Email)
	require.NotEqual(t, "anon", sess.ID, "login moves the session to a fresh id")
	require.Contains(t, noticeMessages(sess), "Login successful.")

	requireRedirect(t, do(e, http.MethodGet, "/", nil), "/dashboard")
	requireRedirect(t, do(e, http.MethodGet, "/login", nil), "/dashboard")
}

func TestAuth_LoginFailureLeavesSession(t *testing.T) {
	sess := domain.NewSession("anon")
	e := newAuthServer(t, sess, &stubAuth{token: signedToken(t, "1", "7")}, stubRoles{})

	rec := do(e, http.MethodPost, "/login", url.Values{"emailId": {"admin@ppf.test"}, "password": {"wrong-pass"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Login failed. Check your email and password.")
	require.Contains(t, rec.Body.String(), `value="admin@ppf.test"`)
	require.Empty(t, sess.Token)
	require.Equal(t, "anon", sess.ID)
}

func TestAuth_LoginRejectsUndecodableToken(t *testing.T) {
	sess := domain.NewSession("anon")
	e := newAuthServer(t, sess, &stubAuth{token: "not-a-jwt"}, stubRoles{})

	rec := do(e, http.MethodPost, "/login", url.Values{"emailId": {"admin@ppf.test"}, "password": {"secret1"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, sess.Token)
}

func TestAuth_LoginFormValidation(t *testing.T) {
	sess := domain.NewSession("anon")
	e := newAuthServer(t, sess, &stubAuth{}, stubRoles{})

	rec := do(e, http.MethodPost, "/login", url.Values{"emailId": {"nope"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid email address")
	require.Contains(t, rec.Body.String(), "This field is required")
}

func TestAuth_Logout(t *testing.T) {
	sess := loggedIn(admin)
	e := newAuthServer(t, sess, &stubAuth{}, stubRoles{})

	requireRedirect(t, do(e, http.MethodPost, "/logout", url.Values{}), "/login")
	_, ok := sess.Identity()
	require.False(t, ok)
	require.Contains(t, noticeMessages(sess), "You have been logged out.")
}

func registerForm() url.Values {
	return url.Values{
		"firstName":     {"Ana"},
		"lastName":      {"Diaz"},
		"emailId":       {"ana@ppf.test"},
		"contactNumber": {"0123456789"},
		"password":      {"secret1"},
		"dob":           {"1990-05-01"},
		"roleId":        {"2"},
		"gender":        {"female"},
	}
}

func TestAuth_Register(t *testing.T) {
	sess := domain.NewSession("anon")
	auth := &stubAuth{}
	roles := stubRoles{roles: []domain.Role{{ID: 2, RoleName: "Manager", Status: domain.StatusActive}}}
	e := newAuthServer(t, sess, auth, roles)

	rec := do(e, http.MethodGet, "/register", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `<option value="2">Manager</option>`)

	requireRedirect(t, do(e, http.MethodPost, "/register", registerForm()), "/login")
	require.Len(t, auth.registered, 1)
	reg := auth.registered[0]
	require.Equal(t, domain.StatusActive, reg.Status)
	require.Equal(t, 2, reg.RoleID)
	require.Equal(t, "secret1", reg.Password)
	require.Empty(t, sess.Token, "registering never logs in")
	require.Contains(t, noticeMessages(sess), "Registration successful. Please log in.")
}

func TestAuth_RegisterFailures(t *testing.T) {
	sess := domain.NewSession("anon")
	auth := &stubAuth{failSignup: true}
	e := newAuthServer(t, sess, auth, stubRoles{fail: true})

	form := registerForm()
	form.Set("password", "abc")
	rec := do(e, http.MethodPost, "/register", form)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Must be at least 6 characters")
	require.Contains(t, rec.Body.String(), "Could not load roles.")
	require.Empty(t, auth.registered)

	rec = do(e, http.MethodPost, "/register", registerForm())
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Registration failed. Please try again.")
	require.Contains(t, rec.Body.String(), `value="ana@ppf.test"`)
}

func TestAuth_SessionStatus(t *testing.T) {
	anon := newAuthServer(t, domain.NewSession("anon"), &stubAuth{}, stubRoles{})
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(do(anon, http.MethodGet, "/api/session", nil).Body.Bytes(), &resp))
	require.False(t, resp.LoggedIn)
	require.Empty(t, resp.Email)

	in := newAuthServer(t, loggedIn(admin), &stubAuth{}, stubRoles{})
	resp = sessionResponse{}
	require.NoError(t, json.Unmarshal(do(in, http.MethodGet, "/api/session", nil).Body.Bytes(), &resp))
	require.True(t, resp.LoggedIn)
	require.Equal(t, "admin@ppf.test", resp.Email)
}
