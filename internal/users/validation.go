package users

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/2beens/blogpress/pkg"
)

var phoneRegex = regexp.MustCompile(`^\d{10}$`)

// RegistrationInput is the body of a registration request.
type RegistrationInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DOB         string `json:"dob"`
	CollegeName string `json:"collegeName"`
	State       string `json:"state"`
}

func (in *RegistrationInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.DOB = strings.TrimSpace(in.DOB)
	in.CollegeName = strings.TrimSpace(in.CollegeName)
	in.State = strings.TrimSpace(in.State)
}

// Validate trims the input and checks it; today bounds the date of birth.
func (in *RegistrationInput) Validate(today time.Time) error {
	in.normalize()

	var errs error
	errs = multierr.Append(errs, minLength("username", "Username", in.Username, 2))
	errs = multierr.Append(errs, minLength("collegeName", "College name", in.CollegeName, 2))
	errs = multierr.Append(errs, minLength("state", "State", in.State, 2))

	switch {
	case in.Email == "":
		errs = multierr.Append(errs, pkg.NewFieldError("email", "Email is required"))
	case !validEmail(in.Email):
		errs = multierr.Append(errs, pkg.NewFieldError("email", "Email is invalid"))
	}

	if !phoneRegex.MatchString(in.Phone) {
		errs = multierr.Append(errs, pkg.NewFieldError("phone", "Phone number must be exactly 10 digits"))
	}

	if in.DOB == "" {
		errs = multierr.Append(errs, pkg.NewFieldError("dob", "Date of birth is required"))
	} else if dob, err := time.Parse(DateLayout, in.DOB); err != nil {
		errs = multierr.Append(errs, pkg.NewFieldError("dob", "Date of birth must be in YYYY-MM-DD format"))
	} else if dob.After(today) {
		errs = multierr.Append(errs, pkg.NewFieldError("dob", "Date of birth cannot be in the future"))
	}

	return pkg.NewValidationError(errs)
}

func (in *RegistrationInput) toUser() *User {
	return &User{
		Username:    in.Username,
		Email:       in.Email,
		Phone:       in.Phone,
		DOB:         in.DOB,
		CollegeName: in.CollegeName,
		State:       in.State,
	}
}

func minLength(field, label, value string, min int) error {
	if value == "" {
		return pkg.NewFieldError(field, label+" is required")
	}
	if utf8.RuneCountInString(value) < min {
		return pkg.NewFieldError(field, fmt.Sprintf("%s must be at least %d characters", label, min))
	}
	return nil
}

// validEmail accepts a bare address only, no display name.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}
