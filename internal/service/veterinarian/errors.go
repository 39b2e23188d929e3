package veterinarian

import (
	"errors"

	"github.com/iequus/iequus_backend/pkg/validate"
)

var ErrInvalidInput = validate.ErrInvalid

var (
	ErrNotFound         = errors.New("veterinarian not found")
	ErrHospitalNotFound = errors.New("hospital not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrNoChanges        = errors.New("no fields provided or values unchanged")
)
