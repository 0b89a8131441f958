package service

import (
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
)

// Decision is the outcome of a route guard check.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "login"
	default:
		return "unauthorized"
	}
}

// RoleSet is the set of role ids allowed on a screen.
type RoleSet map[int]struct{}

func NewRoleSet(roles ...int) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (rs RoleSet) Has(role int) bool {
	_, ok := rs[role]
	return ok
}

// Authorize decides whether sess may open a screen guarded by allowed. The
// role is taken from the token itself, never from the mirrored field.
func Authorize(decoder ports.ClaimsDecoder, sess *domain.Session, allowed RoleSet) Decision {
	if sess == nil || sess.Token == "" {
		return RedirectLogin
	}
	claims, err := decoder.Decode(sess.Token)
	if err != nil {
		return RedirectUnauthorized
	}
	if !allowed.Has(claims.RoleID) {
		return RedirectUnauthorized
	}
	return Allow
}
