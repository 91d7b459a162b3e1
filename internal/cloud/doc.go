// Package cloud resolves Tuya BLE device credentials through the Tuya
// IoT platform.
//
// Two layers:
//
//   - OpenAPI: the HTTP client. Signs requests with the platform's
//     HMAC-SHA256 scheme, performs the smart-home login, and fetches
//     the account device list plus per-device factory records.
//   - Manager: the resolver. Owns one configuration record, shares the
//     process-wide credentials.Store, and decides - through a strict
//     precedence of local data, direct login match, and cache scan -
//     which cached entry answers a lookup by hardware address,
//     triggering a login or a fetch only when necessary.
//
// Login rejections travel as LoginResult values, never as errors: the
// resolver degrades to a miss and the consuming surface decides what to
// show. Only transport-level failures (unreachable endpoint, undecodable
// body) surface as errors, and even those are absorbed into misses at
// the resolver boundary.
package cloud
