// Package jwt mints short-lived access tokens from decoded forms-authentication tickets
// and verifies them, so services that cannot read the machine key can still trust the
// ticket fields.
package jwt
