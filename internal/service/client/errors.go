package client

import (
	"errors"

	"github.com/iequus/iequus_backend/pkg/validate"
)

var ErrInvalidInput = validate.ErrInvalid

var (
	ErrNotFound      = errors.New("client not found")
	ErrHorseNotFound = errors.New("horse not found")
	ErrLinkNotFound  = errors.New("client is not associated with this horse")
	ErrAlreadyLinked = errors.New("client is already associated with this horse")
	ErrNoChanges     = errors.New("no fields provided or values unchanged")
)
