package auth

import (
	"errors"

	"github.com/iequus/iequus_backend/pkg/validate"
)

// ErrInvalidInput is shared with pkg/validate so its errors map the same way.
var ErrInvalidInput = validate.ErrInvalid

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrHospitalNotFound   = errors.New("hospital not found")
	ErrWeakPassword       = errors.New("password does not meet the strength requirements")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrAccountLocked      = errors.New("too many failed logins, try again later")
	ErrUnauthorized       = errors.New("unauthorized")
)
