package handler

import (
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ppfmanagement/admin-dashboard/internal/api/middleware"
	"github.com/ppfmanagement/admin-dashboard/internal/api/view"
	"github.com/ppfmanagement/admin-dashboard/internal/pkg/config"
)

// Card is a dashboard shortcut to a screen.
type Card struct {
	Path        string
	Label       string
	Description string
}

// screens is the navigation order. Only screens the actor's role may open
// are shown.
var screens = []Card{
	{Path: "/dashboard", Label: "Dashboard"},
	{Path: "/clients", Label: "Clients", Description: "Access a comprehensive list of all registered companies."},
	{Path: "/roles", Label: "Roles", Description: "Manage the roles that grant access to the dashboard."},
	{Path: "/users", Label: "Users", Description: "Access a comprehensive list of all registered users."},
	{Path: "/activity", Label: "Activity", Description: "Review recent changes made through the dashboard."},
}

// Pages wraps template rendering with the layout model: title, navigation
// for the session's role and the queued notices.
type Pages struct {
	policy config.RoutePolicy
}

func NewPages(policy config.RoutePolicy) *Pages {
	return &Pages{policy: policy}
}

// Allowed reports whether role may open the screen at path.
func (p *Pages) Allowed(path string, role int) bool {
	return slices.Contains(p.policy.Roles(path), role)
}

// Cards lists the dashboard shortcuts for role.
func (p *Pages) Cards(role int) []Card {
	out := make([]Card, 0, len(screens))
	for _, s := range screens {
		if s.Path != "/dashboard" && p.Allowed(s.Path, role) {
			out = append(out, s)
		}
	}
	return out
}

// Render renders name inside the layout. Notices are drained here so each is
// shown exactly once.
func (p *Pages) Render(c echo.Context, code int, name, title string, data any) error {
	sess := middleware.Session(c)
	page := view.Page{Title: title, Notices: sess.DrainNotices(), Data: data}

	if claims, ok := sess.Identity(); ok {
		page.LoggedIn = true
		page.Email = claims.Email
		current := c.Request().URL.Path
		for _, s := range screens {
			if p.Allowed(s.Path, claims.RoleID) {
				page.Nav = append(page.Nav, view.NavItem{
					Path:   s.Path,
					Label:  s.Label,
					Active: current == s.Path || strings.HasPrefix(current, s.Path+"/"),
				})
			}
		}
	}
	return c.Render(code, name, page)
}
