// Package entries persists configuration records for accounts and
// paired BLE devices.
//
// Two kinds of entry exist: account entries (one per cloud account,
// login context in Data) and device entries (one per paired device,
// account and credential fields accumulated in Options). Together they
// are the two record sources the credential cache pre-warming sweep
// iterates at startup.
//
// Storage is a single SQLite table with JSON-encoded record columns;
// the schema lives in the migrations directory.
package entries
