package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// Claim names issued by the PPF backend.
const (
	claimRoleID = "RoleId"
	claimUserID = "UserId"
)

// emailClaims are tried in order when looking for the subject's email.
var emailClaims = []string{
	"email",
	"EmailId",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress",
	"sub",
}

// JWTClaimsDecoder decodes token payloads without verifying signatures.
type JWTClaimsDecoder struct {
	parser *jwt.Parser
}

func NewJWTClaimsDecoder() *JWTClaimsDecoder {
	return &JWTClaimsDecoder{parser: jwt.NewParser()}
}

// Decode parses the token structurally and extracts RoleId and UserId. Any
// failure is reported as domain.ErrInvalidToken.
func (d *JWTClaimsDecoder) Decode(token string) (domain.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Claims{}, fmt.Errorf("%w: empty token", domain.ErrInvalidToken)
	}

	mc := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, mc); err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	roleID, err := intClaim(mc, claimRoleID)
	if err != nil {
		return domain.Claims{}, err
	}
	userID, err := intClaim(mc, claimUserID)
	if err != nil {
		return domain.Claims{}, err
	}

	claims := domain.Claims{RoleID: roleID, UserID: userID}
	for _, name := range emailClaims {
		if v, ok := mc[name].(string); ok && v != "" {
			claims.Email = v
			break
		}
	}
	return claims, nil
}

// intClaim reads an integer claim that may be encoded as a string or a number.
func intClaim(mc jwt.MapClaims, name string) (int, error) {
	raw, ok := mc[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s claim", domain.ErrInvalidToken, name)
	}
	switch v := raw.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s claim %q is not an integer", domain.ErrInvalidToken, name, v)
		}
		return n, nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: %s claim %v is not an integer", domain.ErrInvalidToken, name, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: %s claim has type %T", domain.ErrInvalidToken, name, raw)
	}
}
