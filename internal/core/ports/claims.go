package ports

import "github.com/ppfmanagement/admin-dashboard/internal/core/domain"

// ClaimsDecoder turns a bearer token into typed claims. Decoding is
// structural only; signatures are the backend's concern.
type ClaimsDecoder interface {
	Decode(token string) (domain.Claims, error)
}
