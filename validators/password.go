package validators

import "errors"

var (
	ErrPasswordEmpty    = errors.New("no password provided")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
)

const (
	minPasswordLen = 8
	maxPasswordLen = 255
)

// PasswordValidator enforces length bounds only. Composition rules are
// deliberately not imposed
func PasswordValidator(p string) error {
	switch {
	case p == "":
		return ErrPasswordEmpty
	case len(p) < minPasswordLen:
		return ErrPasswordTooShort
	case len(p) > maxPasswordLen:
		return ErrPasswordTooLong
	}

	return nil
}
