// Package bridge connects live device sessions to the bridge's output
// surfaces.
//
// The Hub is the single attachment point: a BLE session layer hands it
// a device handle, and the hub builds a presence coordinator around it
// and fans the coordinator's side effects out to MQTT (retained
// availability, retained registry descriptions, datapoint updates,
// domain events) and an optional time-series history sink. In the
// other direction it subscribes to the command topic and routes
// datapoint writes to attached devices that accept them.
//
// The hub owns no transport of its own. It depends on narrow
// Publisher, Subscriber, and History interfaces so it can be exercised
// without a broker or database.
package bridge
