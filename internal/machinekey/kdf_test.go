package machinekey

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testValidationKey = "709FC62CDB7CC79821DEBB2062FDED6795AD8CB37341B55B3763923BEEF662865AF7EC613F9A76171CA3C336ED119D1C103555D87D092BAD4A63F807592B0520"
	testDecryptionKey = "9DA83917EE2DE9008FCB45986195A9BC11EF9496D67042C76B4052CEFA22EF45"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDeriveKeyVectors(t *testing.T) {
	cases := []struct {
		name   string
		master string
		want   string
	}{
		{
			name:   "64 byte validation key",
			master: testValidationKey,
			want:   "9250c28d719d5ba37980992db86611640641e6cd821d9d43b047b79c024a3bff6fb46738c6ba5448864e1e3b99b90350e9dd320d01fee58043282fe6142c6d37",
		},
		{
			name:   "32 byte decryption key",
			master: testDecryptionKey,
			want:   "fdda5892f4dd2fb03ee58b3ef27b099d1463983d569a0bc3511502a45d100002",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveKey(mustHex(t, tc.master))
			assert.Equal(t, tc.want, hex.EncodeToString(got))
		})
	}
}

func TestDeriveKeyMultipleBlocks(t *testing.T) {
	master := make([]byte, 100)
	for i := range master {
		master[i] = byte(i)
	}
	got := DeriveKey(master)
	require.Len(t, got, 100)
	assert.Equal(t,
		"ca8639e48d75d64f565d2770e76c5096f5d3990a0d39c3823f8a2ae9c239caddd26e022c6620a2e818ead3d192f635a2cdef6ecdaf7bb37b64b94c01040b5b9eda652b1866731e4c4a8e067f8d86bc258e983b7ad2021bdb691de59838bb6bed20d140df",
		hex.EncodeToString(got),
	)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	master := mustHex(t, testValidationKey)
	a := DeriveKey(master)
	b := DeriveKey(master)
	assert.True(t, bytes.Equal(a, b))
	assert.False(t, bytes.Equal(a, master))
}

func TestDeriveKeyWithParamsBindsLabelAndContext(t *testing.T) {
	master := mustHex(t, testDecryptionKey)
	base := DeriveKeyWithParams(master, []byte(KDFLabel), nil)
	assert.Equal(t, DeriveKey(master), base)

	assert.NotEqual(t, base, DeriveKeyWithParams(master, []byte("Other.Purpose"), nil))
	assert.NotEqual(t, base, DeriveKeyWithParams(master, []byte(KDFLabel), []byte("ctx")))
}

func TestGenerateKey(t *testing.T) {
	k, err := GenerateKey(32)
	require.NoError(t, err)
	assert.Len(t, k, 64)
	assert.Equal(t, strings.ToUpper(k), k)

	_, err = GenerateKey(0)
	assert.Error(t, err)
}
