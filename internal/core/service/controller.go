package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
)

// ScopeFunc narrows a fetched page before it is stored, e.g. to hide rows a
// role may not see.
type ScopeFunc[T any] func(ctx context.Context, p domain.Page[T]) domain.Page[T]

// Controller orchestrates list state, form mode and CRUD calls for one
// resource. It holds no per-user state; every operation works on the
// ScreenState passed in.
//
// Every successful mutation invalidates the loaded page: the controller
// reloads the current page from the backend instead of trusting local edits.
type Controller[T domain.Record[T]] struct {
	resource string
	gw       ports.ResourceGateway[T]
	audit    ports.AuditRecorder
	scope    ScopeFunc[T]
	log      zerolog.Logger
}

// NewController returns a controller for resource. audit may be nil.
func NewController[T domain.Record[T]](resource string, gw ports.ResourceGateway[T], audit ports.AuditRecorder, log zerolog.Logger) *Controller[T] {
	return &Controller[T]{
		resource: resource,
		gw:       gw,
		audit:    audit,
		log:      log.With().Str("resource", resource).Logger(),
	}
}

// WithScope installs a page filter applied after every successful list call.
func (c *Controller[T]) WithScope(fn ScopeFunc[T]) *Controller[T] {
	c.scope = fn
	return c
}

// LoadPage fetches page/term and replaces the loaded records. On failure the
// state is left exactly as it was.
func (c *Controller[T]) LoadPage(ctx context.Context, st *domain.ScreenState[T], page int, term string) error {
	if page < 0 {
		page = 0
	}

	p, ok := c.gw.List(ctx, domain.PageQuery{PageIndex: page, PageSize: st.PageSize, SearchTerm: term})
	if !ok {
		return fmt.Errorf("load %s page %d: %w", c.resource, page, domain.ErrRequestFailed)
	}
	if c.scope != nil {
		p = c.scope(ctx, p)
	}

	records := make([]T, 0, len(p.Items))
	for _, rec := range p.Items {
		records = append(records, rec.Normalize())
	}

	st.Records = records
	st.TotalCount = p.TotalCount
	st.CurrentPage = page
	st.SearchTerm = term
	st.Loaded = true
	return nil
}

// Search sets the term, rewinds to the first page and reloads.
func (c *Controller[T]) Search(ctx context.Context, st *domain.ScreenState[T], term string) error {
	st.SearchTerm = term
	st.CurrentPage = 0
	return c.LoadPage(ctx, st, 0, term)
}

// OpenCreate opens an empty form.
func (c *Controller[T]) OpenCreate(st *domain.ScreenState[T]) {
	st.OpenCreate()
}

// Close closes whatever form is open.
func (c *Controller[T]) Close(st *domain.ScreenState[T]) {
	st.Close()
}

// Row returns the loaded row with the given id.
func (c *Controller[T]) Row(st *domain.ScreenState[T], id int) (T, error) {
	for _, rec := range st.Records {
		if rec.RecordID() == id {
			return rec, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %d: %w", c.resource, id, domain.ErrNotLoaded)
}

// Edit opens rec for editing. The row is used as loaded; nothing is fetched.
func (c *Controller[T]) Edit(st *domain.ScreenState[T], rec T) {
	st.OpenEdit(rec)
}

// View fetches the record detail and opens it read-only.
func (c *Controller[T]) View(ctx context.Context, st *domain.ScreenState[T], id int) error {
	rec, ok := c.gw.Get(ctx, id)
	if !ok {
		return fmt.Errorf("view %s %d: %w", c.resource, id, domain.ErrRequestFailed)
	}
	st.OpenView(rec.Normalize())
	return nil
}

// Create submits a draft whose id is the unsaved sentinel 0. On failure the
// form stays open.
func (c *Controller[T]) Create(ctx context.Context, st *domain.ScreenState[T], draft T) error {
	created, ok := c.gw.Create(ctx, draft)
	if !ok {
		return fmt.Errorf("create %s: %w", c.resource, domain.ErrRequestFailed)
	}

	st.Close()
	c.reload(ctx, st)
	c.record(ctx, domain.AuditCreate, created.RecordID())
	return nil
}

// Update submits rec by id, patches the loaded row and reloads.
func (c *Controller[T]) Update(ctx context.Context, st *domain.ScreenState[T], rec T) error {
	id := rec.RecordID()
	updated, ok := c.gw.Update(ctx, id, rec)
	if !ok {
		return fmt.Errorf("update %s %d: %w", c.resource, id, domain.ErrRequestFailed)
	}

	if updated.RecordID() != id {
		updated = rec
	}
	updated = updated.Normalize()
	for i := range st.Records {
		if st.Records[i].RecordID() == id {
			st.Records[i] = updated
		}
	}

	st.Close()
	c.reload(ctx, st)
	c.record(ctx, domain.AuditUpdate, id)
	return nil
}

// Delete removes a record. Records not in PendingDelete are rejected before
// any request is made and the state is not touched.
func (c *Controller[T]) Delete(ctx context.Context, st *domain.ScreenState[T], id int, status domain.Status) error {
	if !status.Deletable() {
		return fmt.Errorf("delete %s %d: %w", c.resource, id, domain.ErrNotPendingDelete)
	}

	if _, ok := c.gw.Delete(ctx, id); !ok {
		return fmt.Errorf("delete %s %d: %w", c.resource, id, domain.ErrRequestFailed)
	}

	kept := st.Records[:0:0]
	for _, rec := range st.Records {
		if rec.RecordID() != id {
			kept = append(kept, rec)
		}
	}
	if removed := len(st.Records) - len(kept); removed > 0 && st.TotalCount >= removed {
		st.TotalCount -= removed
	}
	st.Records = kept
	if st.Selected != nil && (*st.Selected).RecordID() == id {
		st.Close()
	}

	c.reload(ctx, st)
	c.record(ctx, domain.AuditDelete, id)
	return nil
}

// reload refreshes the current page after a mutation. A failed reload keeps
// the locally patched rows.
func (c *Controller[T]) reload(ctx context.Context, st *domain.ScreenState[T]) {
	if err := c.LoadPage(ctx, st, st.CurrentPage, st.SearchTerm); err != nil {
		c.log.Warn().Err(err).Int("page", st.CurrentPage).Msg("reload after mutation failed")
	}
}

func (c *Controller[T]) record(ctx context.Context, action domain.AuditAction, id int) {
	c.log.Info().Str("action", string(action)).Int("record_id", id).Msg("record mutated")
	if c.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		Resource: c.resource,
		Action:   action,
		RecordID: id,
		At:       time.Now().UTC(),
	}
	if actor, ok := domain.ActorFrom(ctx); ok {
		entry.ActorEmail = actor.Email
		entry.ActorID = actor.UserID
	}
	c.audit.Record(entry)
}
