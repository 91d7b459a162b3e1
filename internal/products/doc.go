// Package products is the catalogue of known Tuya BLE devices.
//
// Lookups are keyed by Tuya category and product ID, the two fields
// every resolved credential set carries. Fingerbot-style products
// additionally declare their datapoint ID layout so the presence layer
// can recognise device-initiated button presses.
package products
