package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/api/export"
	"github.com/ppfmanagement/admin-dashboard/internal/api/metrics"
	"github.com/ppfmanagement/admin-dashboard/internal/api/middleware"
	"github.com/ppfmanagement/admin-dashboard/internal/api/view"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/service"
)

// Codec ties a record type to its form schema F.
type Codec[T any, F any] struct {
	FromRecord func(T) F
	ToRecord   func(f F, id int) T
	Fields     func(ctx context.Context, f F, errs FieldErrors) []view.Field
	// Prepare applies mode and actor dependent rules to a form before
	// validation.
	Prepare func(f *F, mode domain.Mode, actor domain.Claims)
}

// Permissions are the row and toolbar actions an actor may use. The route
// guard has already decided the actor may open the screen.
type Permissions struct {
	Create bool
	Delete bool
	Search bool
	// Own limits the records the actor may open or change. nil allows all.
	Own func(id int) bool
}

// Owns reports whether record id is open to the actor.
func (p Permissions) Owns(id int) bool {
	return p.Own == nil || p.Own(id)
}

func allowAll(domain.Claims) Permissions {
	return Permissions{Create: true, Delete: true, Search: true}
}

// ScreenConfig describes one management screen.
type ScreenConfig[T any, F any] struct {
	Path  string
	Title string
	Noun  string

	PageSize    int
	ExportLimit int
	// Exports lists the download formats; none hides the export buttons.
	Exports []export.Format

	// Columns are resolved per request so they can depend on lookups.
	Columns     func(ctx context.Context) []view.Column[T]
	Codec       Codec[T, F]
	Permissions func(domain.Claims) Permissions
}

// Screen serves the list, form and export routes of one resource on top of
// a service.Controller. Screen state lives in the session under the screen
// name and is written back after every action.
type Screen[T domain.Record[T], F any] struct {
	cfg   ScreenConfig[T, F]
	ctl   *service.Controller[T]
	pages *Pages
	log   zerolog.Logger
}

func NewScreen[T domain.Record[T], F any](cfg ScreenConfig[T, F], ctl *service.Controller[T], pages *Pages, log zerolog.Logger) *Screen[T, F] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.ExportLimit <= 0 {
		cfg.ExportLimit = 10000
	}
	if cfg.Permissions == nil {
		cfg.Permissions = allowAll
	}
	return &Screen[T, F]{
		cfg:   cfg,
		ctl:   ctl,
		pages: pages,
		log:   log.With().Str("screen", cfg.Path).Logger(),
	}
}

// Register mounts the screen routes on g, which carries the route guard.
func (s *Screen[T, F]) Register(g *echo.Group) {
	g.GET("", s.List)
	g.POST("", s.Create)
	g.POST("/search", s.Search)
	g.GET("/sort", s.Sort)
	g.GET("/new", s.New)
	g.POST("/close", s.Close)
	g.POST("/validate", s.Validate)
	for _, f := range s.cfg.Exports {
		g.GET("/export."+string(f), s.Export(f))
	}
	g.GET("/:id", s.Show)
	g.GET("/:id/edit", s.Edit)
	g.POST("/:id", s.Update)
	g.POST("/:id/delete", s.Delete)
}

func (s *Screen[T, F]) key() string {
	return strings.TrimPrefix(s.cfg.Path, "/")
}

func (s *Screen[T, F]) state(sess *domain.Session) *domain.ScreenState[T] {
	st := domain.NewScreenState[T](s.cfg.PageSize)
	if raw, ok := sess.Screens[s.key()]; ok {
		if err := json.Unmarshal(raw, st); err != nil {
			s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("discarding unreadable screen state")
			st = domain.NewScreenState[T](s.cfg.PageSize)
		}
	}
	st.PageSize = s.cfg.PageSize
	return st
}

func (s *Screen[T, F]) save(sess *domain.Session, st *domain.ScreenState[T]) {
	raw, err := json.Marshal(st)
	if err != nil {
		s.log.Error().Err(err).Msg("encode screen state")
		return
	}
	if sess.Screens == nil {
		sess.Screens = make(map[string]json.RawMessage)
	}
	sess.Screens[s.key()] = raw
}

func (s *Screen[T, F]) back(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, s.cfg.Path)
}

func (s *Screen[T, F]) perms(c echo.Context) Permissions {
	return s.cfg.Permissions(actor(c.Request().Context()))
}

func actor(ctx context.Context) domain.Claims {
	claims, _ := domain.ActorFrom(ctx)
	return claims
}

// record parses the path id and rejects records outside the actor's reach.
func (s *Screen[T, F]) record(c echo.Context) (int, error) {
	id, err := pathID(c)
	if err != nil {
		return 0, err
	}
	if !s.perms(c).Owns(id) {
		s.log.Warn().Int("id", id).Int("user_id", actor(c.Request().Context()).UserID).Msg("record outside actor scope")
		return 0, echo.NewHTTPError(http.StatusForbidden, s.cfg.Noun+" is not available")
	}
	return id, nil
}

// --- List view ---

// List loads the requested page (or the remembered one) and renders it. A
// failed load keeps the previous rows on screen.
func (s *Screen[T, F]) List(c echo.Context) error {
	sess := middleware.Session(c)
	st := s.state(sess)

	page := st.CurrentPage
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		page = n
	}
	if err := s.ctl.LoadPage(c.Request().Context(), st, page, st.SearchTerm); err != nil {
		s.notifyErr(sess, err)
	}
	s.save(sess, st)

	var confirm *view.Row
	if raw := c.QueryParam("confirm"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			if rec, err := s.ctl.Row(st, id); err == nil {
				row := view.Rows([]T{rec}, s.cfg.Columns(c.Request().Context()))[0]
				confirm = &row
			}
		}
	}
	return s.render(c, http.StatusOK, st, s.stateForm(c.Request().Context(), st), confirm)
}

func (s *Screen[T, F]) Search(c echo.Context) error {
	sess := middleware.Session(c)
	if !s.perms(c).Search {
		return echo.NewHTTPError(http.StatusForbidden, "search is not available")
	}
	st := s.state(sess)
	term := strings.TrimSpace(c.FormValue("searchTerm"))
	if err := s.ctl.Search(c.Request().Context(), st, term); err != nil {
		s.notifyErr(sess, err)
		// the term still applies to the next successful load
		st.SearchTerm = term
		st.CurrentPage = 0
	}
	s.save(sess, st)
	return s.back(c)
}

// Sort orders the loaded page only; it never triggers a fetch.
func (s *Screen[T, F]) Sort(c echo.Context) error {
	sess := middleware.Session(c)
	st := s.state(sess)
	st.SortColumn = c.QueryParam("by")
	st.SortDesc = c.QueryParam("dir") == "desc"
	s.save(sess, st)
	return s.back(c)
}

// --- Form modes ---

func (s *Screen[T, F]) New(c echo.Context) error {
	if !s.perms(c).Create {
		return echo.NewHTTPError(http.StatusForbidden, "create is not available")
	}
	sess := middleware.Session(c)
	st := s.state(sess)
	s.ctl.OpenCreate(st)
	s.save(sess, st)
	return s.back(c)
}

func (s *Screen[T, F]) Close(c echo.Context) error {
	sess := middleware.Session(c)
	st := s.state(sess)
	s.ctl.Close(st)
	s.save(sess, st)
	return s.back(c)
}

// Show fetches the record detail and opens it read-only.
func (s *Screen[T, F]) Show(c echo.Context) error {
	id, err := s.record(c)
	if err != nil {
		return err
	}
	sess := middleware.Session(c)
	st := s.state(sess)
	if err := s.ctl.View(c.Request().Context(), st, id); err != nil {
		s.notifyErr(sess, err)
	}
	s.save(sess, st)
	return s.back(c)
}

// Edit opens the loaded row for editing without a fetch.
func (s *Screen[T, F]) Edit(c echo.Context) error {
	id, err := s.record(c)
	if err != nil {
		return err
	}
	sess := middleware.Session(c)
	st := s.state(sess)
	rec, err := s.ctl.Row(st, id)
	if err != nil {
		s.notifyErr(sess, err)
		return s.back(c)
	}
	s.ctl.Edit(st, rec)
	s.save(sess, st)
	return s.back(c)
}

// --- Mutations ---

func (s *Screen[T, F]) Create(c echo.Context) error {
	if !s.perms(c).Create {
		return echo.NewHTTPError(http.StatusForbidden, "create is not available")
	}
	sess := middleware.Session(c)
	st := s.state(sess)
	ctx := c.Request().Context()

	f, errs, err := s.bind(c, domain.ModeCreating)
	if err != nil {
		return err
	}
	if errs != nil {
		s.observe("create", errs)
		st.OpenCreate()
		s.save(sess, st)
		return s.renderDraft(c, st, f, errs, domain.ModeCreating, 0)
	}

	err = s.ctl.Create(ctx, st, s.cfg.Codec.ToRecord(f, 0))
	s.observe("create", err)
	if err != nil {
		s.notifyErr(sess, err)
		st.OpenCreate()
		s.save(sess, st)
		return s.renderDraft(c, st, f, nil, domain.ModeCreating, 0)
	}
	sess.Notify(domain.NoticeSuccess, s.cfg.Noun+" created")
	s.save(sess, st)
	return s.back(c)
}

func (s *Screen[T, F]) Update(c echo.Context) error {
	id, err := s.record(c)
	if err != nil {
		return err
	}
	sess := middleware.Session(c)
	st := s.state(sess)
	ctx := c.Request().Context()

	f, errs, err := s.bind(c, domain.ModeEditing)
	if err != nil {
		return err
	}
	if errs != nil {
		s.observe("update", errs)
		return s.renderDraft(c, st, f, errs, domain.ModeEditing, id)
	}

	err = s.ctl.Update(ctx, st, s.cfg.Codec.ToRecord(f, id))
	s.observe("update", err)
	if err != nil {
		s.notifyErr(sess, err)
		return s.renderDraft(c, st, f, nil, domain.ModeEditing, id)
	}
	sess.Notify(domain.NoticeSuccess, s.cfg.Noun+" updated")
	s.save(sess, st)
	return s.back(c)
}

// Delete checks the row status first. A deletable row is only removed once
// the request carries confirm=yes; otherwise the list asks for confirmation.
func (s *Screen[T, F]) Delete(c echo.Context) error {
	if !s.perms(c).Delete {
		return echo.NewHTTPError(http.StatusForbidden, "delete is not available")
	}
	id, err := s.record(c)
	if err != nil {
		return err
	}
	sess := middleware.Session(c)
	st := s.state(sess)

	rec, err := s.ctl.Row(st, id)
	if err != nil {
		s.notifyErr(sess, err)
		return s.back(c)
	}
	status := rec.RecordStatus()
	if status.Deletable() && c.FormValue("confirm") != "yes" {
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("%s?confirm=%d", s.cfg.Path, id))
	}

	err = s.ctl.Delete(c.Request().Context(), st, id, status)
	s.observe("delete", err)
	if err != nil {
		s.notifyErr(sess, err)
		return s.back(c)
	}
	sess.Notify(domain.NoticeSuccess, s.cfg.Noun+" deleted")
	s.save(sess, st)
	return s.back(c)
}

type validateResponse struct {
	Valid  bool        `json:"valid"`
	Errors FieldErrors `json:"errors"`
}

// Validate checks a draft without submitting it. The page script calls it on
// change and on blur to drive field messages and the submit button.
//
// @Summary      Validate a draft record
// @Tags         screens
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        screen  path      string  true   "Screen name (clients, roles, users)"
// @Param        mode    query     string  false  "creating or editing"
// @Success      200     {object}  validateResponse
// @Failure      400     {object}  map[string]string
// @Router       /{screen}/validate [post]
func (s *Screen[T, F]) Validate(c echo.Context) error {
	mode := domain.Mode(c.QueryParam("mode"))
	if mode != domain.ModeEditing {
		mode = domain.ModeCreating
	}
	_, errs, err := s.bind(c, mode)
	if err != nil {
		return err
	}
	if errs == nil {
		errs = FieldErrors{}
	}
	return c.JSON(http.StatusOK, validateResponse{Valid: len(errs) == 0, Errors: errs})
}

// Export downloads up to ExportLimit rows matching the current search in
// format f. A failed load returns to the list with a notice.
func (s *Screen[T, F]) Export(f export.Format) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := middleware.Session(c)
		term := s.state(sess).SearchTerm
		ctx := c.Request().Context()

		all := domain.NewScreenState[T](s.cfg.ExportLimit)
		if err := s.ctl.LoadPage(ctx, all, 0, term); err != nil {
			s.notifyErr(sess, err)
			return s.back(c)
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, f, s.table(ctx, all.Records)); err != nil {
			s.log.Error().Err(err).Str("format", string(f)).Msg("export failed")
			return err
		}
		s.log.Info().Int("rows", len(all.Records)).Str("search", term).Str("format", string(f)).Msg("exported")
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.%s"`, s.key(), f))
		return c.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
	}
}

// table renders records with the screen columns plus a trailing status.
func (s *Screen[T, F]) table(ctx context.Context, records []T) export.Table {
	cols := s.cfg.Columns(ctx)
	t := export.Table{Title: s.cfg.Title, Header: make([]string, 0, len(cols)+1)}
	for _, col := range cols {
		t.Header = append(t.Header, col.Label)
	}
	t.Header = append(t.Header, "Status")
	for _, rec := range records {
		line := make([]string, 0, len(cols)+1)
		for _, col := range cols {
			line = append(line, col.Value(rec))
		}
		t.Rows = append(t.Rows, append(line, rec.RecordStatus().String()))
	}
	return t
}

// --- Rendering ---

// bind reads the submitted form and validates it. Field errors are returned
// separately from binding failures.
func (s *Screen[T, F]) bind(c echo.Context, mode domain.Mode) (F, FieldErrors, error) {
	var f F
	if err := c.Bind(&f); err != nil {
		return f, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if s.cfg.Codec.Prepare != nil {
		s.cfg.Codec.Prepare(&f, mode, actor(c.Request().Context()))
	}
	if err := c.Validate(&f); err != nil {
		if errs, ok := AsFieldErrors(err); ok {
			return f, errs, nil
		}
		return f, nil, err
	}
	return f, nil, nil
}

// stateForm builds the form for the remembered mode, if any.
func (s *Screen[T, F]) stateForm(ctx context.Context, st *domain.ScreenState[T]) *view.Form {
	if !st.FormOpen() {
		return nil
	}
	var f F
	id := 0
	if st.Selected != nil {
		f = s.cfg.Codec.FromRecord(*st.Selected)
		id = (*st.Selected).RecordID()
	}
	if s.cfg.Codec.Prepare != nil {
		s.cfg.Codec.Prepare(&f, st.Mode, actor(ctx))
	}
	return s.form(ctx, f, nil, st.Mode, id)
}

func (s *Screen[T, F]) form(ctx context.Context, f F, errs FieldErrors, mode domain.Mode, id int) *view.Form {
	form := &view.Form{Mode: mode, Fields: s.cfg.Codec.Fields(ctx, f, errs)}
	switch mode {
	case domain.ModeCreating:
		form.Title = "Add " + s.cfg.Noun
		form.Action = s.cfg.Path
	case domain.ModeEditing:
		form.Title = "Edit " + s.cfg.Noun
		form.Action = fmt.Sprintf("%s/%d", s.cfg.Path, id)
	default:
		form.Title = s.cfg.Noun + " details"
		form.ReadOnly = true
	}
	return form
}

// renderDraft re-renders the list with a submitted draft in the form.
func (s *Screen[T, F]) renderDraft(c echo.Context, st *domain.ScreenState[T], f F, errs FieldErrors, mode domain.Mode, id int) error {
	code := http.StatusUnprocessableEntity
	if errs == nil {
		code = http.StatusBadGateway
	}
	return s.render(c, code, st, s.form(c.Request().Context(), f, errs, mode, id), nil)
}

func (s *Screen[T, F]) render(c echo.Context, code int, st *domain.ScreenState[T], form *view.Form, confirm *view.Row) error {
	ctx := c.Request().Context()
	cols := s.cfg.Columns(ctx)
	perms := s.perms(c)

	rows := view.Rows(view.SortRecords(st.Records, cols, st.SortColumn, st.SortDesc), cols)
	for i := range rows {
		rows[i].CanEdit = perms.Owns(rows[i].ID)
		rows[i].CanDelete = perms.Delete && rows[i].CanEdit
	}
	downloads := make([]view.Download, 0, len(s.cfg.Exports))
	for _, f := range s.cfg.Exports {
		downloads = append(downloads, view.Download{Label: f.Label(), Href: s.cfg.Path + "/export." + string(f)})
	}

	return s.pages.Render(c, code, "list", s.cfg.Title, view.ListPage{
		Screen:     s.cfg.Path,
		Title:      s.cfg.Title,
		Noun:       s.cfg.Noun,
		Search:     st.SearchTerm,
		Headers:    view.Headers(cols, st.SortColumn, st.SortDesc),
		Rows:       rows,
		Pagination: view.Pagination{Current: st.CurrentPage, TotalCount: st.TotalCount, Size: st.PageSize},
		Form:       form,
		CanCreate:  perms.Create,
		CanSearch:  perms.Search,
		Exports:    downloads,
		Confirm:    confirm,
	})
}

func (s *Screen[T, F]) observe(op string, err error) {
	outcome := "ok"
	if _, invalid := AsFieldErrors(err); invalid || errors.Is(err, domain.ErrNotPendingDelete) {
		outcome = "rejected"
	} else if err != nil {
		outcome = "error"
	}
	metrics.RecordOperationsTotal.WithLabelValues(s.key(), op, outcome).Inc()
}

// notifyErr turns a controller error into a flash notice.
func (s *Screen[T, F]) notifyErr(sess *domain.Session, err error) {
	switch {
	case errors.Is(err, domain.ErrNotPendingDelete):
		sess.Notify(domain.NoticeError, "Only records with status 'Delete' can be deleted.")
	case errors.Is(err, domain.ErrNotLoaded):
		sess.Notify(domain.NoticeError, s.cfg.Noun+" is not on the current page.")
	case errors.Is(err, domain.ErrRequestFailed):
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("screen action failed")
		sess.Notify(domain.NoticeError, "The server could not complete the request. Please try again.")
	default:
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("screen action failed")
		sess.Notify(domain.NoticeError, "Something went wrong.")
	}
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
