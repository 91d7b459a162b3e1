package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the Tuya BLE bridge.
//
// All topics use the scheme: tuyable/{category}/{address_or_id}
const (
	// TopicPrefix is the base for all bridge topics.
	TopicPrefix = "tuyable"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "tuyable/system"
)

// Topics provides builders for bridge MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	availTopic := topics.DeviceAvailability("AA:BB:CC:DD:EE:FF")
//	// Returns: "tuyable/availability/AA:BB:CC:DD:EE:FF"
type Topics struct{}

// DeviceAvailability returns the topic for a device's availability state.
// Published retained so late subscribers see the current state.
//
// Example: tuyable/availability/AA:BB:CC:DD:EE:FF
func (Topics) DeviceAvailability(address string) string {
	return fmt.Sprintf("%s/availability/%s", TopicPrefix, address)
}

// DeviceDatapoints returns the topic for a device's datapoint updates.
//
// Example: tuyable/datapoints/AA:BB:CC:DD:EE:FF
func (Topics) DeviceDatapoints(address string) string {
	return fmt.Sprintf("%s/datapoints/%s", TopicPrefix, address)
}

// DeviceRegistry returns the topic for a device's registry description
// (name, model, versions). Published retained and refreshed on every
// genuine connect edge.
//
// Example: tuyable/registry/AA:BB:CC:DD:EE:FF
func (Topics) DeviceRegistry(address string) string {
	return fmt.Sprintf("%s/registry/%s", TopicPrefix, address)
}

// Event returns the topic for domain events.
//
// Example: tuyable/event/fingerbot_button
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, eventType)
}

// SystemStatus returns the bridge status topic (online/offline/LWT).
//
// Example: tuyable/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// DeviceCommand returns the topic a device's datapoint commands arrive
// on. Consumers publish here; the bridge subscribes.
//
// Example: tuyable/command/AA:BB:CC:DD:EE:FF
func (Topics) DeviceCommand(address string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, address)
}

// AllCommands returns the pattern matching every device command topic.
//
// Pattern: tuyable/command/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+", TopicPrefix)
}

// CommandAddress extracts the device address from a command topic.
// Returns false for topics outside the command namespace.
func (Topics) CommandAddress(topic string) (string, bool) {
	prefix := TopicPrefix + "/command/"
	address, ok := strings.CutPrefix(topic, prefix)
	if !ok || address == "" || strings.Contains(address, "/") {
		return "", false
	}
	return address, true
}
