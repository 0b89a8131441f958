package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// envelope is the paged list payload. encoding/json matches keys
// case-insensitively, so both "items" and "Items" land here.
type envelope[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"totalCount"`
	PageIndex  *int `json:"pageIndex"`
	PageSize   *int `json:"pageSize"`
}

func (e envelope[T]) page(q domain.PageQuery) domain.Page[T] {
	p := domain.Page[T]{Items: e.Items, TotalCount: e.TotalCount, PageIndex: q.PageIndex, PageSize: q.PageSize}
	if p.Items == nil {
		p.Items = []T{}
	}
	if e.PageIndex != nil {
		p.PageIndex = *e.PageIndex
	}
	if e.PageSize != nil && *e.PageSize > 0 {
		p.PageSize = *e.PageSize
	}
	return p
}

// Resource is the typed gateway for one backend entity.
type Resource[T domain.Record[T]] struct {
	cl         *Client
	name       string
	listPath   string
	itemPath   string
	createPath string

	// match turns on local paging: the list endpoint returns every row as a
	// bare array and the gateway filters and slices it.
	match func(rec T, term string) bool
}

func NewClients(cl *Client) *Resource[domain.Client] {
	return &Resource[domain.Client]{
		cl:         cl,
		name:       "clients",
		listPath:   "Client/GetAllClients",
		itemPath:   "Client",
		createPath: "Client/CreateClient",
	}
}

func NewRoles(cl *Client) *Resource[domain.Role] {
	return &Resource[domain.Role]{
		cl:         cl,
		name:       "roles",
		listPath:   "Role",
		itemPath:   "Role",
		createPath: "Role/CreateRole",
		match: func(r domain.Role, term string) bool {
			return strings.Contains(strings.ToLower(r.RoleName), strings.ToLower(term))
		},
	}
}

func NewUsers(cl *Client) *Resource[domain.User] {
	return &Resource[domain.User]{
		cl:         cl,
		name:       "users",
		listPath:   "User/GetAllUsers",
		itemPath:   "User",
		createPath: "User/CreateUser",
	}
}

// Name is the resource label used in logs, metrics and cache keys.
func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) List(ctx context.Context, q domain.PageQuery) (domain.Page[T], bool) {
	start := time.Now()
	if r.match != nil {
		return r.listLocal(ctx, q, start)
	}

	query := url.Values{}
	query.Set("pageIndex", strconv.Itoa(q.PageIndex))
	query.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.SearchTerm != "" {
		query.Set("searchTerm", q.SearchTerm)
	}

	var env envelope[T]
	err := r.cl.do(ctx, call{method: http.MethodGet, path: r.listPath, query: query, auth: true}, &env)
	if !r.cl.observe(r.name, "list", start, err) {
		return domain.EmptyPage[T](q), false
	}
	return env.page(q), true
}

func (r *Resource[T]) listLocal(ctx context.Context, q domain.PageQuery, start time.Time) (domain.Page[T], bool) {
	var all []T
	err := r.cl.do(ctx, call{method: http.MethodGet, path: r.listPath, auth: true}, &all)
	if !r.cl.observe(r.name, "list", start, err) {
		return domain.EmptyPage[T](q), false
	}

	matched := all
	if term := strings.TrimSpace(q.SearchTerm); term != "" {
		matched = make([]T, 0, len(all))
		for _, rec := range all {
			if r.match(rec, term) {
				matched = append(matched, rec)
			}
		}
	}

	p := domain.Page[T]{TotalCount: len(matched), PageIndex: q.PageIndex, PageSize: q.PageSize}
	if q.PageSize <= 0 {
		p.Items = matched
		return p, true
	}
	lo := min(q.PageIndex*q.PageSize, len(matched))
	hi := min(lo+q.PageSize, len(matched))
	p.Items = append([]T{}, matched[lo:hi]...)
	return p, true
}

func (r *Resource[T]) Get(ctx context.Context, id int) (T, bool) {
	start := time.Now()
	var out T
	err := r.cl.do(ctx, call{method: http.MethodGet, path: r.item(id), auth: true}, &out)
	if !r.cl.observe(r.name, "get", start, err) {
		var zero T
		return zero, false
	}
	return out.Normalize(), true
}

// Create posts rec. A 2xx reply without a body is a success that echoes rec.
func (r *Resource[T]) Create(ctx context.Context, rec T) (T, bool) {
	start := time.Now()
	out := rec.Normalize()
	err := r.cl.do(ctx, call{method: http.MethodPost, path: r.createPath, body: out, auth: true}, &out)
	if errors.Is(err, errEmptyBody) {
		err = nil
	}
	if !r.cl.observe(r.name, "create", start, err) {
		var zero T
		return zero, false
	}
	return out.Normalize(), true
}

func (r *Resource[T]) Update(ctx context.Context, id int, rec T) (T, bool) {
	start := time.Now()
	out := rec.Normalize()
	err := r.cl.do(ctx, call{method: http.MethodPut, path: r.item(id), body: out, auth: true}, &out)
	if errors.Is(err, errEmptyBody) {
		err = nil
	}
	if !r.cl.observe(r.name, "update", start, err) {
		var zero T
		return zero, false
	}
	return out.Normalize(), true
}

func (r *Resource[T]) Delete(ctx context.Context, id int) (T, bool) {
	start := time.Now()
	var out T
	err := r.cl.do(ctx, call{method: http.MethodDelete, path: r.item(id), auth: true}, &out)
	if errors.Is(err, errEmptyBody) {
		err = nil
	}
	if !r.cl.observe(r.name, "delete", start, err) {
		var zero T
		return zero, false
	}
	return out, true
}

func (r *Resource[T]) item(id int) string {
	return r.itemPath + "/" + strconv.Itoa(id)
}
