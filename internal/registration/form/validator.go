package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule is a cross-field rule. It runs after the per-field rules over a freshly
// computed error set and may add or remove errors.
type Rule func(v Values, errs Errors)

// MustMatch requires other to equal field.
//
// If other already carries an error of another kind (for example it is still
// empty) the rule leaves it alone. Otherwise a difference sets KindMismatch on
// other and equality clears other entirely.
func MustMatch(field, other Field) Rule {
	return func(v Values, errs Errors) {
		if kind, ok := errs[other]; ok && kind != KindMismatch {
			return
		}
		if v.Get(field) != v.Get(other) {
			errs[other] = KindMismatch
			return
		}
		delete(errs, other)
	}
}

// Validator evaluates the per-field rules declared on Values and then the
// cross-field rules. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	rules    []Rule
}

// NewValidator builds a validator. The registration form passes
// MustMatch(FieldPassword, FieldConfirmPassword); see NewRegistrationValidator.
func NewValidator(rules ...Rule) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: validate, rules: rules}
}

// NewRegistrationValidator returns the validator used by the registration view.
func NewRegistrationValidator() *Validator {
	return NewValidator(MustMatch(FieldPassword, FieldConfirmPassword))
}

// Validate computes all errors for values from scratch.
func (v *Validator) Validate(values Values) Errors {
	errs := Errors{}
	if err := v.validate.Struct(values); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs[Field(fe.Field())] = kindForTag(fe.Tag())
			}
		}
	}
	for _, rule := range v.rules {
		rule(values, errs)
	}
	return errs
}

func kindForTag(tag string) Kind {
	switch tag {
	case "required":
		return KindRequired
	case "min":
		return KindMinLength
	case "eqfield":
		return KindMismatch
	default:
		return KindInvalid
	}
}
