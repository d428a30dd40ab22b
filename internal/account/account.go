// Package account talks to the service that creates user accounts.
package account

import (
	"context"
	"fmt"
	"net/http"

	"signup/internal/registration/form"
	"signup/pkg/platform/sentinel"
)

// Registration is the payload sent to the account service. Field names match
// the form controls.
type Registration struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Username        string `json:"username"`
	Phone           string `json:"phone"`
	Country         string `json:"country"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// FromValues copies the current form values into a payload.
func FromValues(v form.Values) Registration {
	return Registration{
		FirstName:       v.FirstName,
		LastName:        v.LastName,
		Username:        v.Username,
		Phone:           v.Phone,
		Country:         v.Country,
		Password:        v.Password,
		ConfirmPassword: v.ConfirmPassword,
	}
}

// RemoteError is a rejection returned by the account service. Its text is
// shown to the user as is.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("account service returned status %d", e.StatusCode)
}

// UnavailableError reports that the account service could not be reached.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return "account service unavailable"
}

func (e *UnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{sentinel.ErrUnavailable}
	}
	return []error{sentinel.ErrUnavailable, e.Err}
}

// Service registers accounts.
type Service interface {
	Register(ctx context.Context, reg Registration) error
}
