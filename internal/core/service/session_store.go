package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
)

// SessionStore is the only place session identity is mutated.
type SessionStore struct {
	auth    ports.AuthGateway
	decoder ports.ClaimsDecoder
	log     zerolog.Logger
}

func NewSessionStore(auth ports.AuthGateway, decoder ports.ClaimsDecoder, log zerolog.Logger) *SessionStore {
	return &SessionStore{auth: auth, decoder: decoder, log: log}
}

// Login authenticates against the backend and, on success, stores the token
// and its decoded claims in sess. On failure sess is left as it was.
func (s *SessionStore) Login(ctx context.Context, sess *domain.Session, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrLoginFailed
	}

	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("login rejected")
		return fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
	}

	claims, err := s.decoder.Decode(token)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("login returned undecodable token")
		return fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
	}
	claims.Email = email

	sess.Authenticate(token, claims)
	s.log.Info().Str("email", email).Int("role_id", claims.RoleID).Int("user_id", claims.UserID).Msg("login succeeded")
	return nil
}

// Logout clears all identity fields of sess.
func (s *SessionStore) Logout(sess *domain.Session) {
	if email := sess.Email; email != "" {
		s.log.Info().Str("email", email).Msg("logout")
	}
	sess.Clear()
}

// IsLoggedIn reports whether sess holds an identity backed by a token.
func (s *SessionStore) IsLoggedIn(sess *domain.Session) bool {
	_, ok := sess.Identity()
	return ok
}

// Register creates an account. It never logs the caller in.
func (s *SessionStore) Register(ctx context.Context, reg domain.Registration) error {
	if err := s.auth.Register(ctx, reg); err != nil {
		s.log.Warn().Err(err).Str("email", reg.EmailID).Msg("registration rejected")
		return fmt.Errorf("%w: %v", domain.ErrRegistrationFailed, err)
	}
	s.log.Info().Str("email", reg.EmailID).Msg("registration succeeded")
	return nil
}
