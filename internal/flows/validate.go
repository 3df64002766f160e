package flows

import (
	"net/mail"
	"strings"
)

// SignupInput is the flow-local signup form.
type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
	FirstName       string
	LastName        string
}

// ValidateSignup checks the form locally, before any network call. It
// returns the first failing field and message.
func ValidateSignup(in SignupInput) (field, msg string, ok bool) {
	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		return "email", "email is required", false
	case !validEmail(email):
		return "email", "email is invalid", false
	case in.Password == "":
		return "password", "password is required", false
	case in.Password != in.ConfirmPassword:
		return "confirmPassword", "passwords do not match", false
	}
	return "", "", true
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
