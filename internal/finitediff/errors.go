package finitediff

import "errors"

var (
	// ErrInvalidParams indicates a grid that cannot be discretised:
	// non-positive steps, inverted bounds or too few nodes.
	ErrInvalidParams = errors.New("finitediff: invalid grid parameters")

	// ErrSingularSystem indicates a zero pivot in the tridiagonal elimination.
	// The grid configuration cannot be solved implicitly; retrying will not help.
	ErrSingularSystem = errors.New("finitediff: singular tridiagonal system")

	// ErrSpotOutOfGrid indicates the requested spot maps outside the truncated grid.
	ErrSpotOutOfGrid = errors.New("finitediff: spot outside grid domain")

	// ErrInvalidInput indicates a non-positive spot or time to expiry.
	ErrInvalidInput = errors.New("finitediff: invalid pricing input")
)
