package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Claims is the typed view of the bearer token payload.
type Claims struct {
	RoleID int
	UserID int
	Email  string
}

// NoticeLevel classifies a transient notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Session is the server-side state of one browser session. Token is the only
// ground truth; RoleID and UserID mirror its decoded claims.
type Session struct {
	ID        string                     `json:"id"`
	Token     string                     `json:"token,omitempty"`
	Email     string                     `json:"email,omitempty"`
	RoleID    int                        `json:"roleId,omitempty"`
	UserID    int                        `json:"userId,omitempty"`
	Notices   []Notice                   `json:"notices,omitempty"`
	Screens   map[string]json.RawMessage `json:"screens,omitempty"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// NewSession returns an anonymous session with the given id.
func NewSession(id string) *Session {
	return &Session{ID: id, CreatedAt: time.Now().UTC()}
}

// Identity returns the mirrored claims. Without a token nothing is trusted.
func (s *Session) Identity() (Claims, bool) {
	if s == nil || s.Token == "" || s.Email == "" {
		return Claims{}, false
	}
	return Claims{RoleID: s.RoleID, UserID: s.UserID, Email: s.Email}, true
}

// Authenticate stores a token together with its decoded claims.
func (s *Session) Authenticate(token string, claims Claims) {
	s.Token = token
	s.Email = claims.Email
	s.RoleID = claims.RoleID
	s.UserID = claims.UserID
	s.Screens = nil
}

// Clear drops every identity field and all screen state in one step.
func (s *Session) Clear() {
	s.Token = ""
	s.Email = ""
	s.RoleID = 0
	s.UserID = 0
	s.Screens = nil
}

// Notify queues a notice for the next render.
func (s *Session) Notify(level NoticeLevel, msg string) {
	s.Notices = append(s.Notices, Notice{Level: level, Message: msg})
}

// DrainNotices returns and clears the queued notices.
func (s *Session) DrainNotices() []Notice {
	n := s.Notices
	s.Notices = nil
	return n
}

type tokenKey struct{}

// WithToken returns a context carrying the bearer token for outgoing calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom extracts the bearer token placed by WithToken.
func TokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(string)
	return t, ok && t != ""
}

type actorKey struct{}

// WithActor returns a context carrying the acting user's claims.
func WithActor(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, actorKey{}, c)
}

// ActorFrom extracts the claims placed by WithActor.
func ActorFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(actorKey{}).(Claims)
	return c, ok
}
