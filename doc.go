// Package aspxauth decodes and issues forms-authentication ticket cookies (.ASPXAUTH)
// compatible with a machineKey configured for SHA1 validation and AES decryption.
//
// An [Engine] is built once from a [Config] through [Builder.Build] and is then safe to
// call from multiple goroutines. Two protection schemes are supported: [ModeLegacy],
// which uses the configured keys directly, and [ModeKDF], which derives purpose-bound
// keys from them.
//
// # Architecture boundaries
//
// aspxauth is the public surface. The ticket layout lives in the ticket package and the
// signing and encryption primitives in internal/machinekey; neither exposes key material.
//
// # What this package must NOT do
//
//   - Distinguish decode failures in returned errors. Callers see [ErrTicketInvalid] or
//     [ErrTicketExpired]; the cause goes to metrics and debug logs only.
//   - Log cookie bytes or keys.
//   - Set or parse HTTP cookie headers.
package aspxauth
