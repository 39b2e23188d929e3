package measure

import (
	"errors"

	"github.com/iequus/iequus_backend/pkg/validate"
)

var ErrInvalidInput = validate.ErrInvalid

var (
	ErrNotFound            = errors.New("measure not found")
	ErrHorseNotFound       = errors.New("horse not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPredictionFailed    = errors.New("body score prediction failed")
	ErrNoChanges           = errors.New("no fields provided or values unchanged")
)
