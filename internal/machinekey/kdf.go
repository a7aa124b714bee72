package machinekey

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
)

// KDFLabel is the purpose label bound into every key derived for ticket protection.
const KDFLabel = "FormsAuthentication.Ticket"

// DeriveKey derives a key of len(master) bytes for ticket protection.
func DeriveKey(master []byte) []byte {
	return DeriveKeyWithParams(master, []byte(KDFLabel), nil)
}

// DeriveKeyWithParams runs the SP800-108 counter-mode KDF with HMAC-SHA512 as PRF:
//
//	K(i) = HMAC(master, [i]_32 || label || 0x00 || context || [L]_32)
//
// and returns the leftmost len(master) bytes of K(1) || K(2) || ...
func DeriveKeyWithParams(master, label, context []byte) []byte {
	size := len(master)
	keyLengthInBits := uint32(size) * 8

	input := make([]byte, 4+len(label)+1+len(context)+4)
	copy(input[4:], label)
	copy(input[5+len(label):], context)
	binary.BigEndian.PutUint32(input[5+len(label)+len(context):], keyLengthInBits)

	mac := hmac.New(sha512.New, master)
	out := make([]byte, 0, size+sha512.Size)
	for i := uint32(1); len(out) < size; i++ {
		binary.BigEndian.PutUint32(input[:4], i)
		mac.Reset()
		mac.Write(input)
		out = mac.Sum(out)
	}
	return out[:size]
}

// GenerateKey returns size random bytes as upper-case hex, the form machine keys are
// usually written in configuration files.
func GenerateKey(size int) (string, error) {
	if size <= 0 {
		return "", errors.New("key size must be > 0")
	}
	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(raw)), nil
}
