// Package keylight models Elgato Key Light accessory state and drives the
// accessory's JSON HTTP control endpoint.
//
// The endpoint at /elgato/lights exchanges one shape in both directions:
//
//	{"numberOfLights":1,"lights":[{"on":1,"brightness":20,"temperature":213}]}
//
// Mutations are full-object replacements; the endpoint accepts no partial
// patches, so every mutation first reads current state. Brightness lives in
// [0, 100] percent and temperature in [143, 344] mireds; requested values
// outside those domains are clamped to the nearest bound before
// transmission, never rejected.
//
// # Failure policy
//
// Every network operation is one bounded attempt that fails fast with a
// typed *DeviceError (unreachable, malformed response, HTTP status). The
// package performs no automatic retry; retry and backoff, if desired, are
// a caller policy layered above the client.
//
// # Concurrency
//
// Toggle and the Step operations are read-then-write compounds with no
// device-side compare-and-swap: a concurrent external mutation between the
// read and the write is last-write-wins. Callers that share one accessory
// across goroutines must keep mutations serialized themselves.
package keylight
