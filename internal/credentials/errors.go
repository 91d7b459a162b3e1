package credentials

import "errors"

// Domain errors for the credentials package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, credentials.ErrIncompleteCredentials) {
//	    // handle invalid credential record
//	}
var (
	// ErrIncompleteCredentials is returned when a credential record is
	// missing a mandatory field. Well-formed remote data never triggers
	// this; it guards against malformed stored entries.
	ErrIncompleteCredentials = errors.New("credentials: missing mandatory field")

	// ErrInvalidAddress is returned when a factory MAC field cannot be
	// canonicalized to a hardware address.
	ErrInvalidAddress = errors.New("credentials: invalid address")
)
