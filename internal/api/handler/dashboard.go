package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/api/middleware"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
)

type dashboardPage struct {
	Email string
	Cards []Card
}

// Dashboard renders the landing page with one card per screen the role may
// open.
func Dashboard(pages *Pages) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, _ := domain.ActorFrom(c.Request().Context())
		return pages.Render(c, http.StatusOK, "dashboard", "Dashboard", dashboardPage{
			Email: actor.Email,
			Cards: pages.Cards(actor.RoleID),
		})
	}
}

const activityLimit = 100

type activityPage struct {
	Enabled bool
	Entries []domain.AuditEntry
}

// ActivityHandler lists recent audit entries. A nil repository renders the
// screen as disabled.
type ActivityHandler struct {
	repo  ports.AuditRepository
	pages *Pages
	log   zerolog.Logger
}

func NewActivityHandler(repo ports.AuditRepository, pages *Pages, log zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{repo: repo, pages: pages, log: log}
}

func (h *ActivityHandler) List(c echo.Context) error {
	if h.repo == nil {
		return h.pages.Render(c, http.StatusOK, "activity", "Activity", activityPage{})
	}
	entries, err := h.repo.Recent(c.Request().Context(), activityLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("load audit entries")
		middleware.Session(c).Notify(domain.NoticeError, "Could not load recent activity.")
		entries = nil
	}
	return h.pages.Render(c, http.StatusOK, "activity", "Activity", activityPage{Enabled: true, Entries: entries})
}
