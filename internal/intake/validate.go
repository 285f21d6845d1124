package intake

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	FieldFullName = "fullName"
	FieldMobile   = "mobile"
	FieldAddress  = "address"
	FieldMessage  = "message"
)

// Fields is the raw form input.
type Fields struct {
	FullName string `json:"fullName"`
	Mobile   string `json:"mobile"`
	Address  string `json:"address"`
	Message  string `json:"message"`
}

// Trimmed returns f with surrounding whitespace removed from every field.
func (f Fields) Trimmed() Fields {
	return Fields{
		FullName: strings.TrimSpace(f.FullName),
		Mobile:   strings.TrimSpace(f.Mobile),
		Address:  strings.TrimSpace(f.Address),
		Message:  strings.TrimSpace(f.Message),
	}
}

// FieldErrors maps a field name to its single error message.
type FieldErrors map[string]string

var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type rule struct {
	field    string
	min, max int
	minMsg   string
	get      func(Fields) string
}

var rules = []rule{
	{FieldFullName, 2, 100, "Name must be at least 2 characters", func(f Fields) string { return f.FullName }},
	{FieldMobile, 8, 20, "Please enter a valid phone number", func(f Fields) string { return f.Mobile }},
	{FieldAddress, 2, 200, "Please enter your address", func(f Fields) string { return f.Address }},
	{FieldMessage, 0, 1000, "", func(f Fields) string { return f.Message }},
}

// Validate checks every field after trimming and returns one message per
// invalid field, or nil when the input is acceptable.
func Validate(f Fields) FieldErrors {
	f = f.Trimmed()

	var errs FieldErrors
	for _, r := range rules {
		n := utf8.RuneCountInString(r.get(f))
		var msg string
		switch {
		case n < r.min:
			msg = r.minMsg
		case n > r.max:
			msg = fmt.Sprintf("String must contain at most %d character(s)", r.max)
		default:
			continue
		}
		if errs == nil {
			errs = FieldErrors{}
		}
		errs[r.field] = msg
	}
	return errs
}
