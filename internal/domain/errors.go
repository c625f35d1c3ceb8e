package domain

import (
	"errors"

	"github.com/mansoorceksport/gymcard/internal/ethiopian"
)

// Common errors
var (
	ErrMemberNotFound = errors.New("member not found")

	// Date and duration parsing errors. The calendar ones are owned by the converter
	// package and re-exported so callers can match everything through domain.
	ErrInvalidFormat              = ethiopian.ErrInvalidFormat
	ErrMissingInput               = ethiopian.ErrMissingInput
	ErrUnsupportedYear            = ethiopian.ErrUnsupportedYear
	ErrUnrecognizedDurationFormat = errors.New("unrecognized duration format")

	ErrStorageUnavailable = errors.New("storage unavailable")
)
