package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub gateway
// ---------------------------------------------------------------------------

type stubClientGateway struct {
	mu      sync.Mutex
	rows    map[int]domain.Client
	nextID  int
	calls   []string
	queries []domain.PageQuery

	failList   bool
	failGet    bool
	failCreate bool
	failUpdate bool
	failDelete bool
}

func newStubClientGateway(n int) *stubClientGateway {
	g := &stubClientGateway{rows: make(map[int]domain.Client), nextID: 1}
	for i := 0; i < n; i++ {
		id := g.nextID
		g.nextID++
		g.rows[id] = domain.Client{
			ID:                id,
			ClientName:        "client " + string(rune('a'+i%26)),
			NumberOfEmployees: 1 + i,
			Status:            domain.Status(i % 3),
			StartDate:         "2024-01-01T00:00:00",
		}
	}
	return g
}

func (g *stubClientGateway) sorted() []domain.Client {
	out := make([]domain.Client, 0, len(g.rows))
	for _, c := range g.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *stubClientGateway) List(_ context.Context, q domain.PageQuery) (domain.Page[domain.Client], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "list")
	g.queries = append(g.queries, q)
	if g.failList {
		return domain.EmptyPage[domain.Client](q), false
	}

	var matched []domain.Client
	for _, c := range g.sorted() {
		if q.SearchTerm == "" || strings.Contains(strings.ToLower(c.ClientName), strings.ToLower(q.SearchTerm)) {
			matched = append(matched, c)
		}
	}
	start := q.PageIndex * q.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return domain.Page[domain.Client]{
		Items:      append([]domain.Client{}, matched[start:end]...),
		TotalCount: len(matched),
		PageIndex:  q.PageIndex,
		PageSize:   q.PageSize,
	}, true
}

func (g *stubClientGateway) Get(_ context.Context, id int) (domain.Client, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "get")
	c, ok := g.rows[id]
	if g.failGet || !ok {
		return domain.Client{}, false
	}
	return c, true
}

func (g *stubClientGateway) Create(_ context.Context, rec domain.Client) (domain.Client, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "create")
	if g.failCreate {
		return domain.Client{}, false
	}
	rec.ID = g.nextID
	g.nextID++
	g.rows[rec.ID] = rec
	return rec, true
}

func (g *stubClientGateway) Update(_ context.Context, id int, rec domain.Client) (domain.Client, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "update")
	if _, ok := g.rows[id]; g.failUpdate || !ok {
		return domain.Client{}, false
	}
	rec.ID = id
	g.rows[id] = rec
	return rec, true
}

func (g *stubClientGateway) Delete(_ context.Context, id int) (domain.Client, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "delete")
	c, ok := g.rows[id]
	if g.failDelete || !ok {
		return domain.Client{}, false
	}
	delete(g.rows, id)
	return c, true
}

func (g *stubClientGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type stubRecorder struct {
	entries []domain.AuditEntry
}

func (r *stubRecorder) Record(e domain.AuditEntry) { r.entries = append(r.entries, e) }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newClientController(g *stubClientGateway, rec *stubRecorder) *Controller[domain.Client] {
	if rec == nil {
		return NewController[domain.Client]("clients", g, nil, discardLogger)
	}
	return NewController[domain.Client]("clients", g, rec, discardLogger)
}

func cloneState(st *domain.ScreenState[domain.Client]) domain.ScreenState[domain.Client] {
	c := *st
	c.Records = append([]domain.Client(nil), st.Records...)
	if st.Selected != nil {
		sel := *st.Selected
		c.Selected = &sel
	}
	return c
}
