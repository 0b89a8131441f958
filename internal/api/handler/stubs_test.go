package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ppfmanagement/admin-dashboard/internal/api/middleware"
	"github.com/ppfmanagement/admin-dashboard/internal/api/view"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/pkg/config"
)

// memGateway is an in-memory ResourceGateway that logs every call.
type memGateway[T domain.Record[T]] struct {
	mu        sync.Mutex
	rows      []T
	calls     []string
	lastQuery domain.PageQuery
	fail      bool
}

func (g *memGateway[T]) log(op string) {
	g.calls = append(g.calls, op)
}

func (g *memGateway[T]) called(op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Contains(g.calls, op)
}

func (g *memGateway[T]) List(_ context.Context, q domain.PageQuery) (domain.Page[T], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.log("list")
	g.lastQuery = q
	if g.fail {
		return domain.EmptyPage[T](q), false
	}
	items := g.rows
	if q.PageSize > 0 {
		lo := min(q.PageIndex*q.PageSize, len(items))
		hi := min(lo+q.PageSize, len(items))
		items = items[lo:hi]
	}
	return domain.Page[T]{Items: slices.Clone(items), TotalCount: len(g.rows), PageIndex: q.PageIndex, PageSize: q.PageSize}, true
}

func (g *memGateway[T]) Get(_ context.Context, id int) (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.log("get")
	for _, r := range g.rows {
		if r.RecordID() == id && !g.fail {
			return r, true
		}
	}
	var zero T
	return zero, false
}

func (g *memGateway[T]) Create(_ context.Context, rec T) (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.log("create")
	if g.fail {
		var zero T
		return zero, false
	}
	g.rows = append(g.rows, rec)
	return rec, true
}

func (g *memGateway[T]) Update(_ context.Context, id int, rec T) (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.log("update")
	if g.fail {
		var zero T
		return zero, false
	}
	for i, r := range g.rows {
		if r.RecordID() == id {
			g.rows[i] = rec
		}
	}
	return rec, true
}

func (g *memGateway[T]) Delete(_ context.Context, id int) (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.log("delete")
	var zero T
	if g.fail {
		return zero, false
	}
	g.rows = slices.DeleteFunc(g.rows, func(r T) bool { return r.RecordID() == id })
	return zero, true
}

// testServer is an echo instance whose every request runs as actor inside
// the shared session sess.
func testServer(t *testing.T, sess *domain.Session, actor domain.Claims) (*echo.Echo, *Pages) {
	t.Helper()
	r, err := view.NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = r
	e.Validator = NewValidator()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetSession(c, sess)
			if sess.Token != "" {
				ctx := domain.WithActor(domain.WithToken(c.Request().Context(), sess.Token), actor)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	})
	return e, NewPages(config.DefaultRoutePolicy())
}

func loggedIn(actor domain.Claims) *domain.Session {
	sess := domain.NewSession("sess-1")
	sess.Authenticate("tok", actor)
	return sess
}

func do(e *echo.Echo, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, location, rec.Header().Get(echo.HeaderLocation))
}

func noticeMessages(sess *domain.Session) []string {
	out := make([]string, 0, len(sess.Notices))
	for _, n := range sess.Notices {
		out = append(out, n.Message)
	}
	return out
}
