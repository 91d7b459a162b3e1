package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAvailability records a device availability transition.
//
// Each point captures one edge of the debounced availability state
// (connected or disconnected after the grace period). The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - address: Canonical device MAC address (e.g., "AA:BB:CC:DD:EE:FF")
//   - deviceID: Tuya cloud device ID (may be empty for unresolved devices)
//   - available: The new availability state
//
// Example:
//
//	client.WriteAvailability("AA:BB:CC:DD:EE:FF", "bfc0a1b2c3d4", true)
func (c *Client) WriteAvailability(address string, deviceID string, available bool) {
	if !c.IsConnected() {
		return
	}

	state := 0
	if available {
		state = 1
	}

	point := write.NewPoint(
		"availability",
		map[string]string{
			"address":   address,
			"device_id": deviceID,
		},
		map[string]interface{}{
			"available": available,
			"state":     state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceEvent records a domain event emitted by a device.
//
// Used for events like fingerbot button presses, where the event itself
// (not a state) is the signal of interest.
//
// Parameters:
//   - eventType: The event type (e.g., "fingerbot_button")
//   - address: Canonical device MAC address
//   - deviceID: Tuya cloud device ID
func (c *Client) WriteDeviceEvent(eventType string, address string, deviceID string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_events",
		map[string]string{
			"event_type": eventType,
			"address":    address,
			"device_id":  deviceID,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCloudFetch records a credential fetch cycle against the Tuya cloud.
//
// Tracks how long a login-plus-fetch cycle took and how many device
// credential records it produced. Useful for spotting API slowdowns.
//
// Parameters:
//   - cacheKey: Hash or short form of the login context (low cardinality tag)
//   - deviceCount: Number of device credential records fetched
//   - duration: Wall time for the full fetch cycle
func (c *Client) WriteCloudFetch(cacheKey string, deviceCount int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"cloud_fetch",
		map[string]string{
			"cache_key": cacheKey,
		},
		map[string]interface{}{
			"device_count": deviceCount,
			"duration_ms":  duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
