package handler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validClient() ClientForm {
	return ClientForm{
		ClientName:        "Acme",
		Address:           "1 Main St",
		NumberOfEmployees: "12",
		EmailID:           "ops@acme.test",
		ContactNumber:     "0123456789",
		Status:            "1",
		StartDate:         "2024-01-01",
	}
}

func validUser() UserForm {
	return UserForm{
		FirstName:     "Ana",
		LastName:      "Diaz",
		EmailID:       "ana@ppf.test",
		ContactNumber: "0123456789",
		DOB:           "1990-05-01",
		RoleID:        "2",
		Gender:        "female",
		Status:        "1",
	}
}

func TestValidator_ClientForm(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(validClient()))

	cases := []struct {
		name  string
		edit  func(*ClientForm)
		field string
		msg   string
	}{
		{"missing name", func(f *ClientForm) { f.ClientName = "" }, "clientName", "This field is required"},
		{"bad email", func(f *ClientForm) { f.EmailID = "acme" }, "emailId", "Invalid email address"},
		{"short phone", func(f *ClientForm) { f.ContactNumber = "12345" }, "contactNumber", "Contact number must be exactly 10 digits"},
		{"phone with letters", func(f *ClientForm) { f.ContactNumber = "01234abcde" }, "contactNumber", "Contact number must be exactly 10 digits"},
		{"zero employees", func(f *ClientForm) { f.NumberOfEmployees = "0" }, "numberOfEmployees", "Must be a whole number of at least 1"},
		{"unknown status", func(f *ClientForm) { f.Status = "5" }, "status", "Must be one of: 0, 1, 2"},
		{"bad start date", func(f *ClientForm) { f.StartDate = "01/02/2024" }, "startDate", "Enter a date as YYYY-MM-DD"},
		{"end before start", func(f *ClientForm) { f.EndDate = "2023-12-31" }, "endDate", "End Date should be later than Start Date"},
		{"end equals start", func(f *ClientForm) { f.EndDate = "2024-01-01" }, "endDate", "End Date should be later than Start Date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validClient()
			tc.edit(&f)
			errs, ok := AsFieldErrors(v.Validate(f))
			require.True(t, ok)
			require.Equal(t, tc.msg, errs[tc.field])
		})
	}

	f := validClient()
	f.EndDate = "2024-06-30"
	require.NoError(t, v.Validate(f))
}

func TestValidator_UserPassword(t *testing.T) {
	v := NewValidator()

	create := validUser()
	create.Creating = true
	errs, ok := AsFieldErrors(v.Validate(create))
	require.True(t, ok)
	require.Equal(t, "This field is required", errs["password"])

	create.Password = "abc"
	errs, _ = AsFieldErrors(v.Validate(create))
	require.Equal(t, "Must be at least 6 characters", errs["password"])

	create.Password = "secret1"
	require.NoError(t, v.Validate(create))

	require.NoError(t, v.Validate(validUser()), "edits may leave the password empty")
}

func TestValidator_LockedRole(t *testing.T) {
	v := NewValidator()

	f := validUser()
	f.LockedRoleID = "3"
	errs, ok := AsFieldErrors(v.Validate(f))
	require.True(t, ok)
	require.Equal(t, "You cannot change your own role", errs["roleId"])

	f.RoleID = "3"
	require.NoError(t, v.Validate(f))
}

func TestValidator_ReportsEveryInvalidField(t *testing.T) {
	errs, ok := AsFieldErrors(NewValidator().Validate(ClientForm{}))
	require.True(t, ok)
	for _, field := range []string{"clientName", "address", "numberOfEmployees", "emailId", "contactNumber", "status", "startDate"} {
		require.Contains(t, errs, field)
	}
	require.NotContains(t, errs, "endDate")
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{"b": "second", "a": "first"}
	require.Equal(t, "a: first; b: second", fe.Error())

	_, ok := AsFieldErrors(nil)
	require.False(t, ok)
}

func TestValidator_ContactNumberProperty(t *testing.T) {
	v := NewValidator()
	rapid.Check(t, func(t *rapid.T) {
		phone := rapid.StringMatching(`[0-9]{1,14}`).Draw(t, "phone")
		f := validClient()
		f.ContactNumber = phone

		errs, _ := AsFieldErrors(v.Validate(f))
		_, bad := errs["contactNumber"]
		if bad == (len(phone) == 10) {
			t.Fatalf("phone %q: invalid=%v", phone, bad)
		}
	})
}
