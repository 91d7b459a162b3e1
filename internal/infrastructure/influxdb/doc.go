// Package influxdb provides time-series recording for the Tuya BLE bridge.
//
// The bridge records device availability transitions, domain events, and
// cloud credential fetch cycles to InfluxDB v2. History recording is
// optional: when disabled in configuration, Connect returns ErrDisabled
// and callers run without a history sink.
//
// # Measurements
//
//	availability     Device availability edges (tags: address, device_id)
//	device_events    Domain events like button presses (tags: event_type, address, device_id)
//	cloud_fetch      Credential fetch cycle timing (tags: cache_key)
//
// # Write Semantics
//
// All write methods are non-blocking. Points are batched and flushed
// asynchronously by the underlying client; write failures surface through
// the SetOnError callback rather than return values. Writes on a
// disconnected client are silently dropped - history is best effort and
// must never block availability reporting.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without history
//	}
//	defer client.Close()
//
//	client.WriteAvailability("AA:BB:CC:DD:EE:FF", "bfc0a1b2c3d4", true)
package influxdb
