package services

import "errors"

// Domain error kinds. Handlers map these onto response codes; no raw
// storage error ever crosses the transport boundary.
var (
	// ErrNotFound covers both a genuinely missing row and a row owned
	// by someone else. The two must stay indistinguishable.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict signals a duplicate username at registration.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidReference signals a task pointing at a category the
	// owner does not have.
	ErrInvalidReference = errors.New("referenced category does not exist")

	// ErrInvalidCredentials is returned for unknown usernames and for
	// wrong passwords alike, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
