package influxdb

import "errors"

// Sentinel errors for history operations; match with errors.Is.
// Write failures never surface here - writes are batched and
// asynchronous, so they arrive via the SetOnError callback instead.
var (
	// ErrNotConnected: the client was closed or never connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed: the startup ping did not succeed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled: history recording is switched off in configuration.
	// Callers treat this as "run without history", not a failure.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
