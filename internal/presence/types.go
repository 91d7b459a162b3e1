package presence

import (
	"github.com/openble/tuya-ble-bridge/internal/products"
)

// DatapointChange describes one datapoint update delivered by the
// transport. ChangedByDevice distinguishes device-initiated changes
// (a physical button press) from echoes of commands we sent.
type DatapointChange struct {
	ID              int
	ChangedByDevice bool
}

// Device is the live transport handle the coordinator observes. The
// transport's packet framing and encryption are out of scope here; the
// coordinator only needs identity accessors and the three callback
// registrations.
type Device interface {
	products.Identity

	DeviceID() string

	RegisterConnectedCallback(fn func())
	RegisterDisconnectedCallback(fn func())
	RegisterUpdateCallback(fn func(changes []DatapointChange))
}

// RegistrySync receives the refreshed device description on every
// genuine connect edge, so registry-side version fields track firmware
// updates. Implementations must be cheap; they run on the transport's
// callback path.
type RegistrySync interface {
	SyncDevice(info products.DeviceInfo)
}

// EventTypeFingerbotButton is emitted when a fingerbot reports a
// device-initiated press of its switch datapoint.
const EventTypeFingerbotButton = "fingerbot_button"

// Event is a domain-level notification about one device.
type Event struct {
	Type     string
	Address  string
	DeviceID string
}

// EventSink receives domain events for fan-out (message bus, history).
type EventSink interface {
	Publish(event Event)
}

// DatapointSink receives a device's datapoint changes after the
// availability side effects of the update have run. Implementations
// must be cheap; they run on the transport's callback path.
type DatapointSink interface {
	PublishDatapoints(address, deviceID string, changes []DatapointChange)
}
