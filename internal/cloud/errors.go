package cloud

import "errors"

// Domain errors for the cloud package.
//
// Login rejections are NOT errors: the remote service's verdict is
// carried in LoginResult so it can flow through the resolver without
// aborting it. These sentinels cover transport-level failures only.
var (
	// ErrRequestFailed is returned when an HTTP request to the Tuya
	// OpenAPI could not complete.
	ErrRequestFailed = errors.New("cloud: request failed")

	// ErrBadResponse is returned when the OpenAPI answered with a body
	// that could not be decoded.
	ErrBadResponse = errors.New("cloud: malformed response")

	// ErrNotAuthenticated is returned when an API call requiring a
	// session is attempted before a successful login.
	ErrNotAuthenticated = errors.New("cloud: not authenticated")
)
