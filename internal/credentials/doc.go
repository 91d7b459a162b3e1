// Package credentials defines the credential data model and the
// process-wide credential cache for Tuya BLE devices.
//
// A device is paired with its encrypted-session secrets (pairing UUID,
// local key, device ID, category, product ID) through a cloud account.
// Several accounts may be active at once; each is identified by a cache
// key derived from its six login context fields (DeriveKey). The Store
// maps cache keys to entries holding an authenticated session handle, a
// login snapshot, and an address-to-credentials table filled lazily by
// the cloud package.
//
// Store entries are never removed within a process lifetime and their
// credential tables only grow. This keeps resolution cheap: once a
// device's credentials are discovered, every later lookup by hardware
// address is a map read.
//
// The package is a leaf: it performs no I/O and knows nothing about the
// cloud API or transport.
package credentials
