package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/api/export"
	"github.com/ppfmanagement/admin-dashboard/internal/api/view"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
	"github.com/ppfmanagement/admin-dashboard/internal/core/service"
)

// RoleAdmin is the role allowed to delete users.
const RoleAdmin = 1

// ScreenOptions are the paging settings shared by every screen.
type ScreenOptions struct {
	PageSize    int
	ExportLimit int
}

// --- Clients ---

var clientColumns = []view.Column[domain.Client]{
	view.TextColumn("clientName", "Client Name", func(c domain.Client) string { return c.ClientName }),
	view.TextColumn("address", "Address", func(c domain.Client) string { return c.Address }),
	view.TextColumn("emailId", "Email", func(c domain.Client) string { return c.EmailID }),
	view.TextColumn("contactNumber", "Contact Number", func(c domain.Client) string { return c.ContactNumber }),
	view.IntColumn("numberOfEmployees", "Employees", func(c domain.Client) int { return c.NumberOfEmployees }),
	view.TextColumn("startDate", "Start Date", func(c domain.Client) string { return c.StartDate }),
	view.TextColumn("endDate", "End Date", func(c domain.Client) string { return c.EndDateValue() }),
}

func NewClientScreen(ctl *service.Controller[domain.Client], pages *Pages, opts ScreenOptions, log zerolog.Logger) *Screen[domain.Client, ClientForm] {
	return NewScreen(ScreenConfig[domain.Client, ClientForm]{
		Path:        "/clients",
		Title:       "Client Management",
		Noun:        "Client",
		PageSize:    opts.PageSize,
		ExportLimit: opts.ExportLimit,
		Exports:     []export.Format{export.CSV, export.XLSX, export.PDF},
		Columns:     func(context.Context) []view.Column[domain.Client] { return clientColumns },
		Codec: Codec[domain.Client, ClientForm]{
			FromRecord: ClientFormFrom,
			ToRecord:   ClientForm.Client,
			Fields: func(_ context.Context, f ClientForm, errs FieldErrors) []view.Field {
				return f.Fields(errs)
			},
		},
	}, ctl, pages, log)
}

// --- Roles ---

var roleColumns = []view.Column[domain.Role]{
	view.IntColumn("id", "ID", func(r domain.Role) int { return r.ID }),
	view.TextColumn("roleName", "Role Name", func(r domain.Role) string { return r.RoleName }),
}

func NewRoleScreen(ctl *service.Controller[domain.Role], pages *Pages, opts ScreenOptions, log zerolog.Logger) *Screen[domain.Role, RoleForm] {
	return NewScreen(ScreenConfig[domain.Role, RoleForm]{
		Path:     "/roles",
		Title:    "Role Management",
		Noun:     "Role",
		PageSize: opts.PageSize,
		Columns:  func(context.Context) []view.Column[domain.Role] { return roleColumns },
		Codec: Codec[domain.Role, RoleForm]{
			FromRecord: RoleFormFrom,
			ToRecord:   RoleForm.Role,
			Fields: func(_ context.Context, f RoleForm, errs FieldErrors) []view.Field {
				return f.Fields(errs)
			},
		},
	}, ctl, pages, log)
}

// --- Users ---

// userPermissions: the self-only role manages just its own record; only
// admins delete accounts.
func userPermissions(actor domain.Claims) Permissions {
	if actor.RoleID == service.RoleSelfOnly {
		self := actor.UserID
		return Permissions{Own: func(id int) bool { return id == self }}
	}
	return Permissions{Create: true, Search: true, Delete: actor.RoleID == RoleAdmin}
}

// roleLookup resolves role ids to names for the user table and form.
type roleLookup struct {
	gw  ports.ResourceGateway[domain.Role]
	log zerolog.Logger
}

func (l roleLookup) all(ctx context.Context) []domain.Role {
	p, ok := l.gw.List(ctx, domain.PageQuery{})
	if !ok {
		l.log.Warn().Msg("role lookup failed, showing role ids")
		return nil
	}
	return p.Items
}

func (l roleLookup) columns(ctx context.Context) []view.Column[domain.User] {
	names := make(map[int]string)
	for _, r := range l.all(ctx) {
		names[r.ID] = r.RoleName
	}
	roleName := func(u domain.User) string {
		if n, ok := names[u.RoleID]; ok {
			return n
		}
		return "Unknown"
	}
	return []view.Column[domain.User]{
		view.TextColumn("firstName", "First Name", func(u domain.User) string { return u.FirstName }),
		view.TextColumn("lastName", "Last Name", func(u domain.User) string { return u.LastName }),
		view.TextColumn("gender", "Gender", func(u domain.User) string { return strings.ToLower(u.Gender) }),
		view.TextColumn("emailId", "Email", func(u domain.User) string { return u.EmailID }),
		view.TextColumn("contactNumber", "Contact Number", func(u domain.User) string { return u.ContactNumber }),
		view.TextColumn("role", "Role", roleName),
		view.TextColumn("dob", "Date of Birth", func(u domain.User) string { return u.DOB }),
	}
}

func NewUserScreen(ctl *service.Controller[domain.User], roles ports.ResourceGateway[domain.Role], pages *Pages, opts ScreenOptions, log zerolog.Logger) *Screen[domain.User, UserForm] {
	lookup := roleLookup{gw: roles, log: log.With().Str("screen", "/users").Logger()}
	return NewScreen(ScreenConfig[domain.User, UserForm]{
		Path:        "/users",
		Title:       "User Management",
		Noun:        "User",
		PageSize:    opts.PageSize,
		ExportLimit: opts.ExportLimit,
		Exports:     []export.Format{export.CSV, export.PDF},
		Columns:     lookup.columns,
		Permissions: userPermissions,
		Codec: Codec[domain.User, UserForm]{
			FromRecord: UserFormFrom,
			ToRecord:   UserForm.User,
			Fields: func(ctx context.Context, f UserForm, errs FieldErrors) []view.Field {
				return f.Fields(errs, lookup.all(ctx))
			},
			Prepare: func(f *UserForm, mode domain.Mode, actor domain.Claims) {
				f.Creating = mode == domain.ModeCreating
				if actor.RoleID == service.RoleSelfOnly {
					f.LockedRoleID = strconv.Itoa(actor.RoleID)
				}
			},
		},
	}, ctl, pages, log)
}
