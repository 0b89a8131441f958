package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/infrastructure/db/memory"
)

func sessionServer(repo *memory.SessionRepository, h echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.Use(Sessions(repo, SessionOptions{Cookie: "sid", TTL: time.Hour}, zerolog.Nop()))
	e.GET("/", h)
	e.POST("/login", h)
	return e
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" {
			return ck
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestSessions_StartsAndPersists(t *testing.T) {
	repo := memory.NewSessionRepository()
	e := sessionServer(repo, func(c echo.Context) error {
		Session(c).Notify(domain.NoticeInfo, "hello")
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	ck := sessionCookie(t, rec)
	require.True(t, ck.HttpOnly)

	stored, err := repo.Load(context.Background(), ck.Value)
	require.NoError(t, err)
	require.Len(t, stored.Notices, 1)
}

func TestSessions_ExposesTokenToContext(t *testing.T) {
	repo := memory.NewSessionRepository()
	sess := domain.NewSession("7f1c9a52-3a2c-4b64-9d0e-2b1a5d1f3c11")
	sess.Authenticate("tok", domain.Claims{RoleID: 1, UserID: 2, Email: "a@ppf.test"})
	require.NoError(t, repo.Save(context.Background(), sess, time.Hour))

	var gotToken string
	var gotActor domain.Claims
	e := sessionServer(repo, func(c echo.Context) error {
		gotToken, _ = domain.TokenFrom(c.Request().Context())
		gotActor, _ = domain.ActorFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sess.ID})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, "tok", gotToken)
	require.Equal(t, 2, gotActor.UserID)
	require.Equal(t, sess.ID, sessionCookie(t, rec).Value)
}

func TestSessions_UnknownCookieStartsFresh(t *testing.T) {
	repo := memory.NewSessionRepository()
	e := sessionServer(repo, func(c echo.Context) error {
		_, ok := domain.TokenFrom(c.Request().Context())
		require.False(t, ok)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.NotEqual(t, "not-a-uuid", sessionCookie(t, rec).Value)
}

func TestRotateSession(t *testing.T) {
	repo := memory.NewSessionRepository()
	old := domain.NewSession("0b5d2f8e-1111-4c3a-9c7e-5a6b7c8d9e0f")
	require.NoError(t, repo.Save(context.Background(), old, time.Hour))

	e := sessionServer(repo, func(c echo.Context) error {
		RotateSession(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: old.ID})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	fresh := sessionCookie(t, rec).Value
	require.NotEqual(t, old.ID, fresh)
	_, err := repo.Load(context.Background(), old.ID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = repo.Load(context.Background(), fresh)
	require.NoError(t, err)
}
