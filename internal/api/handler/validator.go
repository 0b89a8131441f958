package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var phone10 = regexp.MustCompile(`^\d{10}$`)

// FieldErrors maps a form field name to its message. It is the error type
// every failed Validate call returns.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+fe[k])
	}
	return strings.Join(msgs, "; ")
}

// AsFieldErrors unwraps err into FieldErrors.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// FormValidator wraps go-playground/validator so Echo can call c.Validate(form).
// Errors are keyed by the form field name.
type FormValidator struct {
	v *validator.Validate
}

// NewValidator returns a FormValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phone10.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("posint", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= 1
	})

	v.RegisterStructValidation(clientDates, ClientForm{})
	v.RegisterStructValidation(userRules, UserForm{})

	return &FormValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (fv *FormValidator) Validate(i any) error {
	if err := fv.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := make(FieldErrors, len(ve))
			for _, fe := range ve {
				if _, seen := out[fe.Field()]; !seen {
					out[fe.Field()] = fieldError(fe)
				}
			}
			return out
		}
		return err
	}
	return nil
}

// clientDates requires a present end date to be strictly after the start date.
func clientDates(sl validator.StructLevel) {
	f := sl.Current().Interface().(ClientForm)
	if f.EndDate == "" || f.StartDate == "" {
		return
	}
	start, err1 := time.Parse(dateLayout, f.StartDate)
	end, err2 := time.Parse(dateLayout, f.EndDate)
	if err1 != nil || err2 != nil {
		return
	}
	if !end.After(start) {
		sl.ReportError(f.EndDate, "endDate", "EndDate", "afterstart", "")
	}
}

// userRules makes the password mandatory for new accounts only and keeps a
// locked role from being changed.
func userRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(UserForm)
	if f.Creating && f.Password == "" {
		sl.ReportError(f.Password, "password", "Password", "required", "")
	}
	if f.LockedRoleID != "" && f.RoleID != f.LockedRoleID {
		sl.ReportError(f.RoleID, "roleId", "RoleID", "lockedrole", f.LockedRoleID)
	}
}

// fieldError converts a single FieldError into the message shown under the input.
func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "phone10":
		return "Contact number must be exactly 10 digits"
	case "isodate":
		return "Enter a date as YYYY-MM-DD"
	case "posint":
		return "Must be a whole number of at least 1"
	case "lockedrole":
		return "You cannot change your own role"
	case "afterstart":
		return "End Date should be later than Start Date"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Invalid value (%s)", fe.Tag())
	}
}
