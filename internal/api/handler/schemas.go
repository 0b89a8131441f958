package handler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ppfmanagement/admin-dashboard/internal/api/view"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// Form schemas keep every input as the submitted string so an invalid draft
// can be re-rendered exactly as typed.

// --- Client ---

type ClientForm struct {
	ClientName        string `form:"clientName"        validate:"required"`
	Address           string `form:"address"           validate:"required"`
	NumberOfEmployees string `form:"numberOfEmployees" validate:"required,posint"`
	EmailID           string `form:"emailId"           validate:"required,email"`
	ContactNumber     string `form:"contactNumber"     validate:"required,phone10"`
	Status            string `form:"status"            validate:"required,oneof=0 1 2"`
	StartDate         string `form:"startDate"         validate:"required,isodate"`
	EndDate           string `form:"endDate"           validate:"omitempty,isodate"`
}

func ClientFormFrom(c domain.Client) ClientForm {
	return ClientForm{
		ClientName:        c.ClientName,
		Address:           c.Address,
		NumberOfEmployees: strconv.Itoa(c.NumberOfEmployees),
		EmailID:           c.EmailID,
		ContactNumber:     c.ContactNumber,
		Status:            strconv.Itoa(int(c.Status)),
		StartDate:         c.StartDate,
		EndDate:           c.EndDateValue(),
	}
}

// Client converts a validated form. An empty end date is sent as null.
func (f ClientForm) Client(id int) domain.Client {
	c := domain.Client{
		ID:                id,
		ClientName:        strings.TrimSpace(f.ClientName),
		Address:           strings.TrimSpace(f.Address),
		NumberOfEmployees: atoi(f.NumberOfEmployees),
		EmailID:           strings.TrimSpace(f.EmailID),
		ContactNumber:     f.ContactNumber,
		Status:            domain.Status(atoi(f.Status)),
		StartDate:         f.StartDate,
	}
	if f.EndDate != "" {
		end := f.EndDate
		c.EndDate = &end
	}
	return c
}

func (f ClientForm) Fields(errs FieldErrors) []view.Field {
	return []view.Field{
		{Name: "clientName", Label: "Client Name", Type: view.InputText, Value: f.ClientName, Required: true, Error: errs["clientName"]},
		{Name: "address", Label: "Address", Type: view.InputText, Value: f.Address, Required: true, Error: errs["address"]},
		{Name: "emailId", Label: "Email", Type: view.InputEmail, Value: f.EmailID, Required: true, Error: errs["emailId"]},
		{Name: "contactNumber", Label: "Contact Number", Type: view.InputTel, Value: f.ContactNumber, Required: true, Error: errs["contactNumber"]},
		{Name: "numberOfEmployees", Label: "Number of Employees", Type: view.InputNumber, Value: f.NumberOfEmployees, Required: true, Error: errs["numberOfEmployees"]},
		{Name: "startDate", Label: "Start Date", Type: view.InputDate, Value: f.StartDate, Required: true, Error: errs["startDate"]},
		{Name: "endDate", Label: "End Date", Type: view.InputDate, Value: f.EndDate, Error: errs["endDate"]},
		{Name: "status", Label: "Status", Type: view.InputSelect, Options: view.StatusOptions(f.Status), Required: true, Error: errs["status"]},
	}
}

// --- Role ---

type RoleForm struct {
	RoleName string `form:"roleName" validate:"required"`
	Status   string `form:"status"   validate:"required,oneof=0 1 2"`
}

func RoleFormFrom(r domain.Role) RoleForm {
	return RoleForm{RoleName: r.RoleName, Status: strconv.Itoa(int(r.Status))}
}

func (f RoleForm) Role(id int) domain.Role {
	return domain.Role{ID: id, RoleName: strings.TrimSpace(f.RoleName), Status: domain.Status(atoi(f.Status))}
}

func (f RoleForm) Fields(errs FieldErrors) []view.Field {
	return []view.Field{
		{Name: "roleName", Label: "Role Name", Type: view.InputText, Value: f.RoleName, Required: true, Error: errs["roleName"]},
		{Name: "status", Label: "Status", Type: view.InputSelect, Options: view.StatusOptions(f.Status), Required: true, Error: errs["status"]},
	}
}

// --- User ---

// UserForm requires a password only when Creating is set; on edit an empty
// password leaves the stored one untouched. A non-empty LockedRoleID pins
// roleId to that value.
type UserForm struct {
	FirstName     string `form:"firstName"     validate:"required"`
	LastName      string `form:"lastName"      validate:"required"`
	EmailID       string `form:"emailId"       validate:"required,email"`
	ContactNumber string `form:"contactNumber" validate:"required,phone10"`
	Password      string `form:"password"      validate:"omitempty,min=6"`
	DOB           string `form:"dob"           validate:"required,isodate"`
	RoleID        string `form:"roleId"        validate:"required,posint"`
	Gender        string `form:"gender"        validate:"required,oneof=male female"`
	Status        string `form:"status"        validate:"required,oneof=0 1 2"`

	Creating     bool   `form:"-"`
	LockedRoleID string `form:"-"`
}

func UserFormFrom(u domain.User) UserForm {
	f := UserForm{
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		EmailID:       u.EmailID,
		ContactNumber: u.ContactNumber,
		DOB:           u.DOB,
		Gender:        strings.ToLower(u.Gender),
		Status:        strconv.Itoa(int(u.Status)),
	}
	if u.RoleID > 0 {
		f.RoleID = strconv.Itoa(u.RoleID)
	}
	return f
}

func (f UserForm) User(id int) domain.User {
	return domain.User{
		ID:            id,
		FirstName:     strings.TrimSpace(f.FirstName),
		LastName:      strings.TrimSpace(f.LastName),
		Gender:        f.Gender,
		EmailID:       strings.TrimSpace(f.EmailID),
		RoleID:        atoi(f.RoleID),
		ContactNumber: f.ContactNumber,
		Status:        domain.Status(atoi(f.Status)),
		DOB:           f.DOB,
		Password:      f.Password,
	}
}

// Fields renders the user form. roles feeds the role selector, narrowed to
// the locked role when there is one.
func (f UserForm) Fields(errs FieldErrors, roles []domain.Role) []view.Field {
	if f.LockedRoleID != "" {
		roles = slices.DeleteFunc(slices.Clone(roles), func(r domain.Role) bool {
			return strconv.Itoa(r.ID) != f.LockedRoleID
		})
	}
	return []view.Field{
		{Name: "firstName", Label: "First Name", Type: view.InputText, Value: f.FirstName, Required: true, Error: errs["firstName"]},
		{Name: "lastName", Label: "Last Name", Type: view.InputText, Value: f.LastName, Required: true, Error: errs["lastName"]},
		{Name: "emailId", Label: "Email", Type: view.InputEmail, Value: f.EmailID, Required: true, Error: errs["emailId"]},
		{Name: "contactNumber", Label: "Contact Number", Type: view.InputTel, Value: f.ContactNumber, Required: true, Error: errs["contactNumber"]},
		{Name: "password", Label: "Password", Type: view.InputPassword, Required: f.Creating, Error: errs["password"]},
		{Name: "dob", Label: "Date of Birth", Type: view.InputDate, Value: f.DOB, Required: true, Error: errs["dob"]},
		{Name: "gender", Label: "Gender", Type: view.InputSelect, Options: genderOptions(f.Gender), Required: true, Error: errs["gender"]},
		{Name: "roleId", Label: "Role", Type: view.InputSelect, Options: roleOptions(roles, f.RoleID), Required: true, Error: errs["roleId"]},
		{Name: "status", Label: "Status", Type: view.InputSelect, Options: view.StatusOptions(f.Status), Required: true, Error: errs["status"]},
	}
}

// --- Registration ---

type RegisterForm struct {
	FirstName     string `form:"firstName"     validate:"required"`
	LastName      string `form:"lastName"      validate:"required"`
	EmailID       string `form:"emailId"       validate:"required,email"`
	ContactNumber string `form:"contactNumber" validate:"required,phone10"`
	Password      string `form:"password"      validate:"required,min=6"`
	DOB           string `form:"dob"           validate:"required,isodate"`
	RoleID        string `form:"roleId"        validate:"required,posint"`
	Gender        string `form:"gender"        validate:"required,oneof=male female"`
}

// Registration builds the sign-up payload. New accounts start Active.
func (f RegisterForm) Registration() domain.Registration {
	return domain.Registration{
		FirstName:     strings.TrimSpace(f.FirstName),
		LastName:      strings.TrimSpace(f.LastName),
		Gender:        f.Gender,
		EmailID:       strings.TrimSpace(f.EmailID),
		ContactNumber: f.ContactNumber,
		DOB:           f.DOB,
		Password:      f.Password,
		RoleID:        atoi(f.RoleID),
		Status:        domain.StatusActive,
	}
}

func (f RegisterForm) Fields(errs FieldErrors, roles []domain.Role) []view.Field {
	return []view.Field{
		{Name: "firstName", Label: "First Name", Type: view.InputText, Value: f.FirstName, Required: true, Error: errs["firstName"]},
		{Name: "lastName", Label: "Last Name", Type: view.InputText, Value: f.LastName, Required: true, Error: errs["lastName"]},
		{Name: "emailId", Label: "Email", Type: view.InputEmail, Value: f.EmailID, Required: true, Error: errs["emailId"]},
		{Name: "contactNumber", Label: "Phone", Type: view.InputTel, Value: f.ContactNumber, Required: true, Error: errs["contactNumber"]},
		{Name: "password", Label: "Password", Type: view.InputPassword, Required: true, Error: errs["password"]},
		{Name: "dob", Label: "Date of Birth", Type: view.InputDate, Value: f.DOB, Required: true, Error: errs["dob"]},
		{Name: "gender", Label: "Gender", Type: view.InputSelect, Options: genderOptions(f.Gender), Required: true, Error: errs["gender"]},
		{Name: "roleId", Label: "Role", Type: view.InputSelect, Options: roleOptions(roles, f.RoleID), Required: true, Error: errs["roleId"]},
	}
}

func genderOptions(current string) []view.Option {
	return []view.Option{
		{Value: "male", Label: "Male", Selected: current == "male"},
		{Value: "female", Label: "Female", Selected: current == "female"},
	}
}

func roleOptions(roles []domain.Role, current string) []view.Option {
	out := make([]view.Option, 0, len(roles))
	for _, r := range roles {
		v := strconv.Itoa(r.ID)
		out = append(out, view.Option{Value: v, Label: r.RoleName, Selected: v == current})
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
