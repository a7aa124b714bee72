package machinekey

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

const (
	// KeySize is the AES-256 key length.
	KeySize = 32
	// IVSize is the CBC initialization vector length.
	IVSize = aes.BlockSize
)

// Cipher performs AES-256-CBC with PKCS#7 padding.
type Cipher struct {
	block cipher.Block
}

// NewCipher returns a Cipher for a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aes key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &Cipher{block: block}, nil
}

// Encrypt pads plaintext and encrypts it under iv. The result is a fresh slice.
func (c *Cipher) Encrypt(iv, plaintext []byte) ([]byte, error) {
	if len(iv) != IVSize {
		return nil, errors.New("invalid iv size")
	}
	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	out := make([]byte, len(plaintext)+pad)
	copy(out, plaintext)
	copy(out[len(plaintext):], bytes.Repeat([]byte{byte(pad)}, pad))

	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, out)
	return out, nil
}

// Decrypt decrypts ciphertext under iv and strips the padding. ciphertext is not modified.
func (c *Cipher) Decrypt(iv, ciphertext []byte) ([]byte, error) {
	if len(iv) != IVSize {
		return nil, errors.New("invalid iv size")
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext is not a whole number of blocks")
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, ciphertext)

	pad := int(out[len(out)-1])
	if pad == 0 || pad > aes.BlockSize {
		return nil, errors.New("invalid padding")
	}
	for _, b := range out[len(out)-pad:] {
		if int(b) != pad {
			return nil, errors.New("invalid padding")
		}
	}
	return out[:len(out)-pad], nil
}
