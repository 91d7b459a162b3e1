package entries

import "errors"

// Domain errors for the entries package.
var (
	// ErrEntryNotFound is returned when an entry ID does not exist.
	ErrEntryNotFound = errors.New("entries: not found")

	// ErrEntryExists is returned when creating an entry with an ID that
	// already exists.
	ErrEntryExists = errors.New("entries: already exists")

	// ErrInvalidKind is returned when an entry's kind is not recognised.
	ErrInvalidKind = errors.New("entries: invalid kind")
)
