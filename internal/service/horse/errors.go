package horse

import (
	"errors"

	"github.com/iequus/iequus_backend/pkg/validate"
)

var ErrInvalidInput = validate.ErrInvalid

var (
	ErrNotFound  = errors.New("horse not found")
	ErrNoChanges = errors.New("no fields provided or values unchanged")
)
