package view

import (
	"strconv"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// Field input types understood by the form template.
const (
	InputText     = "text"
	InputEmail    = "email"
	InputNumber   = "number"
	InputDate     = "date"
	InputTel      = "tel"
	InputPassword = "password"
	InputSelect   = "select"
)

// Field is one rendered form input.
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Options  []Option
	Required bool
	Error    string
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Form is the record form of a screen. ReadOnly forms have no submit.
type Form struct {
	Title    string
	Action   string
	Mode     domain.Mode
	ReadOnly bool
	Fields   []Field
}

// StatusOptions returns the status selector with current selected.
func StatusOptions(current string) []Option {
	out := make([]Option, 0, 3)
	for _, s := range domain.Statuses() {
		v := strconv.Itoa(int(s))
		out = append(out, Option{Value: v, Label: s.String(), Selected: v == current})
	}
	return out
}

