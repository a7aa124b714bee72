// Package ticket owns the plaintext wire layout of a forms-authentication ticket and the
// binary cursor primitives used to read and write it.
//
// # Binary layout
//
// A ticket payload is written front to back as
//
//	[format version:1][ticket version:1][issue date:8][0xFE][expiration date:8]
//	[persistent:1][name:1+2n][custom data:1+2n][cookie path:1+2n][0xFF]
//
// Dates are 64-bit little-endian tick counts (100ns units since 0001-01-01 UTC). Strings
// carry a one-byte count of UTF-16 code units followed by the code units in little-endian
// order.
//
// # What this package must NOT do
//
//   - Encrypt, sign, or verify bytes; protection lives in internal/machinekey.
//   - Fill in engine defaults such as TTL or cookie path.
package ticket
