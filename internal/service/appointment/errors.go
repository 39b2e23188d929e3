package appointment

import (
	"errors"

	"github.com/iequus/iequus_backend/pkg/validate"
)

var ErrInvalidInput = validate.ErrInvalid

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrHorseNotFound     = errors.New("horse not found")
	ErrImmutableField    = errors.New("horseId and veterinarianId cannot be changed")
	ErrUnsupportedFormat = errors.New("unsupported cbc file format")
	ErrConversionFailed  = errors.New("cbc file could not be converted to pdf")
	ErrNoChanges         = errors.New("no fields provided or values unchanged")
)
