package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
)

const (
	sessionKey        = "session"
	sessionManagerKey = "session_manager"
)

// SessionOptions configures the session cookie.
type SessionOptions struct {
	Cookie  string
	TTL     time.Duration
	Secure  bool
	Skipper echomiddleware.Skipper
}

type sessionManager struct {
	repo ports.SessionRepository
	opts SessionOptions
	log  zerolog.Logger
}

// Sessions loads the session addressed by the cookie (or starts a new one),
// exposes its token and identity through the request context and saves it
// after the handler ran.
func Sessions(repo ports.SessionRepository, opts SessionOptions, log zerolog.Logger) echo.MiddlewareFunc {
	if opts.Cookie == "" {
		opts.Cookie = "ppf_session"
	}
	if opts.Skipper == nil {
		opts.Skipper = echomiddleware.DefaultSkipper
	}
	m := &sessionManager{repo: repo, opts: opts, log: log.With().Str("component", "session").Logger()}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.opts.Skipper(c) {
				return next(c)
			}

			ctx := c.Request().Context()
			sess := m.load(ctx, c)
			c.Set(sessionKey, sess)
			c.Set(sessionManagerKey, m)
			m.setCookie(c, sess.ID)

			if claims, ok := sess.Identity(); ok {
				ctx = domain.WithActor(domain.WithToken(ctx, sess.Token), claims)
				c.SetRequest(c.Request().WithContext(ctx))
			}

			err := next(c)

			// saved even on error: notices queued by the handler must survive
			sess = Session(c)
			if serr := m.repo.Save(context.WithoutCancel(ctx), sess, m.opts.TTL); serr != nil {
				m.log.Error().Err(serr).Str("session_id", sess.ID).Msg("session save failed")
			}
			return err
		}
	}
}

func (m *sessionManager) load(ctx context.Context, c echo.Context) *domain.Session {
	if ck, err := c.Cookie(m.opts.Cookie); err == nil && ck.Value != "" {
		if _, perr := uuid.Parse(ck.Value); perr == nil {
			sess, lerr := m.repo.Load(ctx, ck.Value)
			if lerr == nil {
				return sess
			}
			if !errors.Is(lerr, domain.ErrSessionNotFound) {
				m.log.Error().Err(lerr).Msg("session load failed, starting a new one")
			}
		}
	}
	return domain.NewSession(uuid.NewString())
}

func (m *sessionManager) setCookie(c echo.Context, id string) {
	c.Response().Header().Del(echo.HeaderSetCookie)
	c.SetCookie(&http.Cookie{
		Name:     m.opts.Cookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session returns the request's session. Outside the Sessions middleware it
// returns a throwaway anonymous session.
func Session(c echo.Context) *domain.Session {
	if s, ok := c.Get(sessionKey).(*domain.Session); ok && s != nil {
		return s
	}
	s := domain.NewSession("")
	c.Set(sessionKey, s)
	return s
}

// SetSession installs sess on c. Used by tests and by RotateSession.
func SetSession(c echo.Context, sess *domain.Session) {
	c.Set(sessionKey, sess)
}

// RotateSession moves the session to a fresh id, dropping the old record.
// Called on login so a pre-login cookie never carries an identity.
func RotateSession(c echo.Context) {
	sess := Session(c)
	m, ok := c.Get(sessionManagerKey).(*sessionManager)
	if !ok {
		sess.ID = uuid.NewString()
		return
	}
	if sess.ID != "" {
		if err := m.repo.Delete(c.Request().Context(), sess.ID); err != nil {
			m.log.Warn().Err(err).Str("session_id", sess.ID).Msg("old session delete failed")
		}
	}
	sess.ID = uuid.NewString()
	m.setCookie(c, sess.ID)
}
