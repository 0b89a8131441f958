package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ppfmanagement/admin-dashboard/internal/pkg/config"
)

// backend is a fake PPF REST API.
type backend struct {
	t       *testing.T
	mu      sync.Mutex
	created []map[string]any
}

func (b *backend) token(role, user string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"RoleId": role, "UserId": user}).
		SignedString([]byte("backend-key"))
	require.NoError(b.t, err)
	return tok
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authed := strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/User/login":
		var body struct {
			EmailID  string `json:"emailId"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		roles := map[string]string{"admin@ppf.test": "1", "mgr@ppf.test": "2"}
		role, ok := roles[body.EmailID]
		if !ok || body.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": b.token(role, "1")})

	case !authed:
		w.WriteHeader(http.StatusUnauthorized)

	case r.Method == http.MethodGet && r.URL.Path == "/api/Client/GetAllClients":
		_, _ = io.WriteString(w, `{"items":[{"id":1,"clientName":"Acme","address":"1 Main St","numberOfEmployees":5,
			"emailId":"ops@acme.test","contactNumber":"0123456789","status":1,"startDate":"2024-01-01T00:00:00","endDate":null}],
			"totalCount":1}`)

	case r.Method == http.MethodPost && r.URL.Path == "/api/Client/CreateClient":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.created = append(b.created, body)
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestApp(t *testing.T) (*App, *backend) {
	t.Helper()
	be := &backend{t: t}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Port:            "0",
		Env:             "test",
		LoginRatePerMin: 100,
		API: config.APIConfig{
			BaseURL:     srv.URL + "/api/",
			Timeout:     5 * time.Second,
			PageSize:    10,
			ExportLimit: 100,
		},
		Session: config.SessionConfig{Cookie: "ppf_session", TTL: time.Hour},
		Audit:   config.AuditConfig{Workers: 1},
	}
	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a, be
}

func send(h http.Handler, method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "ppf_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func login(t *testing.T, h http.Handler, email string) *http.Cookie {
	t.Helper()
	rec := send(h, http.MethodPost, "/login", url.Values{"emailId": {email}, "password": {"secret1"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	return sessionCookie(t, rec)
}

func TestApp_AnonymousIsSentToLogin(t *testing.T) {
	a, _ := newTestApp(t)
	h := a.Handler()

	for _, path := range []string{"/clients", "/users", "/dashboard"} {
		rec := send(h, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code, path)
		require.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	rec := send(h, http.MethodGet, "/login", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "User Login")
}

func TestApp_LoginAndBrowseClients(t *testing.T) {
	a, be := newTestApp(t)
	h := a.Handler()
	cookie := login(t, h, "admin@ppf.test")

	rec := send(h, http.MethodGet, "/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Login successful.")
	require.Contains(t, rec.Body.String(), "Welcome, admin@ppf.test")

	rec = send(h, http.MethodGet, "/clients", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Acme")
	require.Contains(t, rec.Body.String(), "2024-01-01")

	form := url.Values{
		"clientName": {"Globex"}, "address": {"2 Side St"}, "numberOfEmployees": {"40"},
		"emailId": {"hq@globex.test"}, "contactNumber": {"0987654321"}, "status": {"1"},
		"startDate": {"2024-02-01"}, "endDate": {""},
	}
	rec = send(h, http.MethodPost, "/clients", form, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/clients", rec.Header().Get("Location"))

	be.mu.Lock()
	require.Len(t, be.created, 1)
	require.Equal(t, "Globex", be.created[0]["clientName"])
	require.Contains(t, be.created[0], "endDate")
	require.Nil(t, be.created[0]["endDate"])
	be.mu.Unlock()

	var sess struct {
		LoggedIn bool   `json:"loggedIn"`
		Email    string `json:"email"`
	}
	rec = send(h, http.MethodGet, "/api/session", nil, cookie)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.True(t, sess.LoggedIn)
	require.Equal(t, "admin@ppf.test", sess.Email)

	rec = send(h, http.MethodPost, "/logout", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = send(h, http.MethodGet, "/clients", nil, cookie)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestApp_RoleWithoutAccessIsRedirected(t *testing.T) {
	a, _ := newTestApp(t)
	h := a.Handler()
	cookie := login(t, h, "mgr@ppf.test")

	rec := send(h, http.MethodGet, "/clients", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/unauthorized", rec.Header().Get("Location"))

	rec = send(h, http.MethodGet, "/unauthorized", nil, cookie)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApp_BadCredentials(t *testing.T) {
	a, _ := newTestApp(t)
	rec := send(a.Handler(), http.MethodPost, "/login", url.Values{"emailId": {"admin@ppf.test"}, "password": {"nope-nope"}}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Login failed")
}

func TestApp_HealthAndMetrics(t *testing.T) {
	a, _ := newTestApp(t)
	h := a.Handler()

	rec := send(h, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies(), "health checks never start a session")

	require.Equal(t, http.StatusOK, send(h, http.MethodGet, "/health/ready", nil, nil).Code)

	send(h, http.MethodGet, "/clients", nil, nil)
	rec = send(h, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ppfadmin_guard_decisions_total")
}

func TestApp_UnknownRouteRendersErrorPage(t *testing.T) {
	a, _ := newTestApp(t)
	h := a.Handler()

	rec := send(h, http.MethodGet, "/nowhere", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Not Found")

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set("Accept", "application/json")
	jrec := httptest.NewRecorder()
	h.ServeHTTP(jrec, req)
	require.Equal(t, http.StatusNotFound, jrec.Code)
	require.Contains(t, jrec.Body.String(), `"error"`)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	cfg := &config.Config{
		API:     config.APIConfig{PageSize: 10, ExportLimit: 10},
		Session: config.SessionConfig{TTL: time.Hour},
	}
	_, err := New(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
}
