package complaint

import "errors"

var (
	// ErrInvalidStatus is returned when a status is not one of the four known values.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrMalformedLocation marks a location cell that does not hold two coordinates.
	// It is not fatal: the complaint keeps the raw text and only map rendering skips it.
	ErrMalformedLocation = errors.New("malformed location")
)

// ValidationError describes why a complaint cannot be stored.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
