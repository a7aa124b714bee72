package machinekey

import (
	"crypto/hmac"
	"crypto/sha1"
	"hash"
)

// SignatureSize is the length of an HMAC-SHA1 signature.
const SignatureSize = sha1.Size

// Validator signs and verifies byte ranges with HMAC-SHA1.
type Validator struct {
	key []byte
	h   func() hash.Hash
}

// NewValidator returns a Validator keyed by key. The key is not copied.
func NewValidator(key []byte) *Validator {
	return &Validator{key: key, h: sha1.New}
}

// Sign returns the signature of b.
func (v *Validator) Sign(b []byte) []byte {
	mac := hmac.New(v.h, v.key)
	mac.Write(b)
	return mac.Sum(nil)
}

// Verify reports whether sig is the signature of b, in constant time.
func (v *Validator) Verify(b, sig []byte) bool {
	return hmac.Equal(v.Sign(b), sig)
}

// SplitSigned separates a trailing signature from signed without verifying it.
func SplitSigned(signed []byte) (payload, sig []byte, ok bool) {
	if len(signed) < SignatureSize {
		return nil, nil, false
	}
	n := len(signed) - SignatureSize
	return signed[:n], signed[n:], true
}

// Open splits a trailing signature off signed and verifies it. The returned payload
// aliases signed.
func (v *Validator) Open(signed []byte) ([]byte, bool) {
	payload, sig, ok := SplitSigned(signed)
	if !ok || !v.Verify(payload, sig) {
		return nil, false
	}
	return payload, true
}
