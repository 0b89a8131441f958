package domain

import (
	"strings"
	"time"
)

// Record is the constraint every managed entity satisfies. T is the entity's
// own type so that Normalize can return a value rather than an interface.
type Record[T any] interface {
	RecordID() int
	RecordStatus() Status
	Normalize() T
}

// Client is a customer organisation.
type Client struct {
	ID                int     `json:"id"`
	ClientName        string  `json:"clientName"`
	Address           string  `json:"address"`
	NumberOfEmployees int     `json:"numberOfEmployees"`
	EmailID           string  `json:"emailId"`
	ContactNumber     string  `json:"contactNumber"`
	Status            Status  `json:"status"`
	StartDate         string  `json:"startDate"`
	EndDate           *string `json:"endDate"`
}

func (c Client) RecordID() int        { return c.ID }
func (c Client) RecordStatus() Status { return c.Status }

// Normalize trims timestamps to dates and turns an empty end date into null.
func (c Client) Normalize() Client {
	c.StartDate = DateOnly(c.StartDate)
	if c.EndDate != nil {
		end := DateOnly(*c.EndDate)
		if end == "" {
			c.EndDate = nil
		} else {
			c.EndDate = &end
		}
	}
	return c
}

// EndDateValue returns the end date or "" when unset.
func (c Client) EndDateValue() string {
	if c.EndDate == nil {
		return ""
	}
	return *c.EndDate
}

// Role is an access role. Role ids double as the RoleId token claim.
type Role struct {
	ID       int    `json:"id"`
	RoleName string `json:"roleName"`
	Status   Status `json:"status"`
}

func (r Role) RecordID() int        { return r.ID }
func (r Role) RecordStatus() Status { return r.Status }
func (r Role) Normalize() Role      { return r }

// User is a dashboard account.
type User struct {
	ID            int    `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Gender        string `json:"gender"`
	EmailID       string `json:"emailId"`
	RoleID        int    `json:"roleId"`
	ContactNumber string `json:"contactNumber"`
	Status        Status `json:"status"`
	DOB           string `json:"dob"`
	Password      string `json:"password,omitempty"`
}

func (u User) RecordID() int        { return u.ID }
func (u User) RecordStatus() Status { return u.Status }

func (u User) Normalize() User {
	u.DOB = DateOnly(u.DOB)
	return u
}

// Registration is the self-service sign-up payload.
type Registration struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Gender        string `json:"gender"`
	EmailID       string `json:"emailId"`
	ContactNumber string `json:"contactNumber"`
	DOB           string `json:"dob"`
	Password      string `json:"password"`
	RoleID        int    `json:"roleId"`
	Status        Status `json:"status"`
}

const dateLayout = "2006-01-02"

// DateOnly reduces a backend timestamp ("2024-01-10T00:00:00", RFC 3339 or a
// bare date) to YYYY-MM-DD. Unparseable input is returned unchanged.
func DateOnly(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	if i := strings.IndexByte(s, 'T'); i == len(dateLayout) {
		return s[:i]
	}
	return s
}
