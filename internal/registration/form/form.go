// Package form holds the registration form model: field values, the field
// errors derived from them, and the submitted/loading flags the view reads.
//
// Errors are never edited in place. Every change recomputes the full error
// set from the current values, so an edit to either password field clears a
// stale mismatch without any reset.
package form

import (
	"fmt"
	"maps"
)

// Field names a form control. The string is also the HTML input name and the
// JSON key sent to the account service.
type Field string

const (
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldUsername        Field = "username"
	FieldPhone           Field = "phone"
	FieldCountry         Field = "country"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
)

// Fields lists every control in display order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldUsername,
	FieldPhone,
	FieldCountry,
	FieldPassword,
	FieldConfirmPassword,
}

// Values are the raw field values.
type Values struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Username        string `json:"username" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	Country         string `json:"country" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// Get returns the value of field, or "" for an unknown field.
func (v Values) Get(field Field) string {
	switch field {
	case FieldFirstName:
		return v.FirstName
	case FieldLastName:
		return v.LastName
	case FieldUsername:
		return v.Username
	case FieldPhone:
		return v.Phone
	case FieldCountry:
		return v.Country
	case FieldPassword:
		return v.Password
	case FieldConfirmPassword:
		return v.ConfirmPassword
	}
	return ""
}

// With returns a copy of v with field set to value.
func (v Values) With(field Field, value string) (Values, error) {
	switch field {
	case FieldFirstName:
		v.FirstName = value
	case FieldLastName:
		v.LastName = value
	case FieldUsername:
		v.Username = value
	case FieldPhone:
		v.Phone = value
	case FieldCountry:
		v.Country = value
	case FieldPassword:
		v.Password = value
	case FieldConfirmPassword:
		v.ConfirmPassword = value
	default:
		return v, fmt.Errorf("unknown field %q", field)
	}
	return v, nil
}

// Kind is the kind of a field error.
type Kind string

const (
	KindRequired  Kind = "required"
	KindMinLength Kind = "minlength"
	// KindMismatch marks a field whose value differs from the one it must match.
	KindMismatch Kind = "mustMatch"
	KindInvalid  Kind = "invalid"
)

// Errors maps a field to its current error. A field absent from the map is valid.
type Errors map[Field]Kind

// Form is the registration form state for one view. It is not safe for
// concurrent use; each request owns its own Form.
type Form struct {
	validator *Validator
	values    Values
	errors    Errors
	submitted bool
	loading   bool
}

// New returns an empty form whose errors are already computed, so a fresh
// form reports every required field.
func New(v *Validator) *Form {
	f := &Form{validator: v}
	f.recompute()
	return f
}

// Set changes one field and recomputes every error.
func (f *Form) Set(field Field, value string) error {
	next, err := f.values.With(field, value)
	if err != nil {
		return err
	}
	f.values = next
	f.recompute()
	return nil
}

// SetValues replaces all values at once.
func (f *Form) SetValues(v Values) {
	f.values = v
	f.recompute()
}

func (f *Form) Value(field Field) string {
	return f.values.Get(field)
}

func (f *Form) Values() Values {
	return f.values
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() Errors {
	return maps.Clone(f.errors)
}

// FieldError returns the error carried by field, if any.
func (f *Form) FieldError(field Field) (Kind, bool) {
	k, ok := f.errors[field]
	return k, ok
}

func (f *Form) FieldValid(field Field) bool {
	_, bad := f.errors[field]
	return !bad
}

// Valid reports form-level validity: every field and cross-field rule holds.
func (f *Form) Valid() bool {
	return len(f.errors) == 0
}

func (f *Form) MarkSubmitted() {
	f.submitted = true
}

func (f *Form) Submitted() bool {
	return f.submitted
}

func (f *Form) SetLoading(loading bool) {
	f.loading = loading
}

func (f *Form) Loading() bool {
	return f.loading
}

// Reset empties the form and clears both flags.
func (f *Form) Reset() {
	f.values = Values{}
	f.submitted = false
	f.loading = false
	f.recompute()
}

func (f *Form) recompute() {
	f.errors = f.validator.Validate(f.values)
}
