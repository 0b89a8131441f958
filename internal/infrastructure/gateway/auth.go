package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// Auth covers the account endpoints that need no bearer token.
type Auth struct {
	cl *Client
}

func NewAuth(cl *Client) *Auth {
	return &Auth{cl: cl}
}

type loginRequest struct {
	EmailID  string `json:"emailId"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	start := time.Now()
	var out loginResponse
	err := a.cl.do(ctx, call{method: http.MethodPost, path: "User/login", body: loginRequest{EmailID: email, Password: password}}, &out)
	if err == nil && out.Token == "" {
		err = errors.New("login response carried no token")
	}
	if !a.cl.observe("auth", "login", start, err) {
		return "", err
	}
	return out.Token, nil
}

func (a *Auth) Register(ctx context.Context, reg domain.Registration) error {
	start := time.Now()
	err := a.cl.do(ctx, call{method: http.MethodPost, path: "User/CreateUser", body: reg}, nil)
	if errors.Is(err, errEmptyBody) {
		err = nil
	}
	a.cl.observe("auth", "register", start, err)
	return err
}

// Roles lists the roles offered on the sign-up form. The backend serves the
// role list without a token.
func (a *Auth) Roles(ctx context.Context) ([]domain.Role, bool) {
	start := time.Now()
	var out []domain.Role
	err := a.cl.do(ctx, call{method: http.MethodGet, path: "Role"}, &out)
	if !a.cl.observe("auth", "roles", start, err) {
		return []domain.Role{}, false
	}
	return out, true
}
