// Package machinekey implements the cryptographic envelope around forms-authentication
// ticket payloads: key derivation, AES-256-CBC, HMAC-SHA1 signatures, and the two
// protection modes that combine them.
//
// # Modes
//
// The legacy protector uses the configured keys as-is, a fixed IV, a 32-byte random
// header, and an inner signature over the plaintext payload in addition to the outer
// signature over the ciphertext. The KDF protector derives both keys with an SP800-108
// counter-mode HMAC-SHA512 KDF and prefixes each ciphertext with a fresh random IV;
// it signs only the outer envelope.
//
// # What this package must NOT do
//
//   - Parse ticket fields; the payload is opaque here.
//   - Log, or return errors that reveal which check failed beyond the exported sentinels.
package machinekey
