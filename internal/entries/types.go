package entries

import (
	"time"

	"github.com/openble/tuya-ble-bridge/internal/credentials"
)

// Kind distinguishes the two configuration-record sources the
// credential cache is pre-warmed from.
type Kind string

const (
	// KindAccount is an account-level entry: its Data holds a full
	// login context for a cloud account.
	KindAccount Kind = "account"

	// KindDevice is a device-level entry: its Options hold the login
	// context (and possibly credentials) for one paired BLE device.
	KindDevice Kind = "device"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	return k == KindAccount || k == KindDevice
}

// ConfigEntry is one stored configuration record.
//
// Account entries carry login fields in Data; device entries carry the
// device address in Data and account/credential fields in Options.
// This split mirrors how the two sources are produced: account setup
// writes Data once, while device resolution appends to Options over
// time (save-data resolutions).
type ConfigEntry struct {
	ID        string
	Kind      Kind
	Title     string
	Data      credentials.Data
	Options   credentials.Data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LoginRecord returns the configuration record that may contain a
// login context: Data for account entries, Options for device entries.
func (e *ConfigEntry) LoginRecord() credentials.Data {
	if e.Kind == KindDevice {
		return e.Options
	}
	return e.Data
}
