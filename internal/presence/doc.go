// Package presence maintains the debounced availability state of live
// Tuya BLE device sessions.
//
// The transport reports connect and disconnect signals asynchronously
// and unreliably: brief disconnects are common and usually recover
// within seconds. One Coordinator per device converts those signals
// into a stable connected/disconnected state - disconnects take effect
// only after an uncancelled grace delay - and performs exactly-once
// side effects per genuine transition: registry synchronization on
// connect edges, listener notification on both edges, datapoint
// forwarding on updates, and domain events for device-initiated
// trigger datapoints.
//
// Collaborators are narrow interfaces (Device, Scheduler, RegistrySync,
// EventSink, DatapointSink) wired at startup; the package has no
// transport, MQTT, or database dependencies of its own.
package presence
