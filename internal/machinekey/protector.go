package machinekey

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the number of random bytes the legacy protector places ahead of the payload.
const HeaderSize = 32

var (
	// ErrSignature reports an outer or inner signature that does not verify.
	ErrSignature = errors.New("machinekey: signature mismatch")
	// ErrDecrypt reports ciphertext that cannot be decrypted or unpadded.
	ErrDecrypt = errors.New("machinekey: decryption failed")
)

// Mode selects the protection scheme.
type Mode int

const (
	// Legacy uses configured keys directly, a fixed IV, a random header and an inner signature.
	Legacy Mode = iota
	// KDF derives keys with DeriveKey and prefixes every ciphertext with a random IV.
	KDF
)

func (m Mode) String() string {
	switch m {
	case Legacy:
		return "legacy"
	case KDF:
		return "kdf"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Keys holds decoded key material. IV is only used by the legacy protector; nil means all zero.
type Keys struct {
	Validation []byte
	Decryption []byte
	IV         []byte
}

// Protector seals ticket payloads into signed ciphertext and opens them again.
//
// Unprotect returns the decrypted bytes with all signatures removed; the first
// HeaderSize() bytes are filler the ticket parser must skip.
type Protector interface {
	Protect(payload []byte) ([]byte, error)
	Unprotect(blob []byte) ([]byte, error)
	HeaderSize() int
	Mode() Mode
}

// New builds the Protector for mode. rnd supplies headers and IVs; nil selects crypto/rand.
func New(mode Mode, keys Keys, rnd io.Reader) (Protector, error) {
	if len(keys.Validation) == 0 {
		return nil, errors.New("validation key is required")
	}
	if rnd == nil {
		rnd = rand.Reader
	}

	switch mode {
	case Legacy:
		iv := keys.IV
		if iv == nil {
			iv = make([]byte, IVSize)
		}
		if len(iv) != IVSize {
			return nil, fmt.Errorf("iv must be %d bytes, got %d", IVSize, len(iv))
		}
		c, err := NewCipher(keys.Decryption)
		if err != nil {
			return nil, err
		}
		return &legacyProtector{
			validator: NewValidator(keys.Validation),
			cipher:    c,
			iv:        append([]byte(nil), iv...),
			rnd:       rnd,
		}, nil
	case KDF:
		c, err := NewCipher(DeriveKey(keys.Decryption))
		if err != nil {
			return nil, err
		}
		return &kdfProtector{
			validator: NewValidator(DeriveKey(keys.Validation)),
			cipher:    c,
			rnd:       rnd,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported protection mode %s", mode)
	}
}

type legacyProtector struct {
	validator *Validator
	cipher    *Cipher
	iv        []byte
	rnd       io.Reader
}

func (p *legacyProtector) Mode() Mode      { return Legacy }
func (p *legacyProtector) HeaderSize() int { return HeaderSize }

// Protect produces CBC(iv, header || payload || HMAC(payload)) || HMAC(ciphertext).
func (p *legacyProtector) Protect(payload []byte) ([]byte, error) {
	plain := make([]byte, HeaderSize, HeaderSize+len(payload)+SignatureSize)
	if _, err := io.ReadFull(p.rnd, plain); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	plain = append(plain, payload...)
	plain = append(plain, p.validator.Sign(payload)...)

	encrypted, err := p.cipher.Encrypt(p.iv, plain)
	if err != nil {
		return nil, err
	}
	return append(encrypted, p.validator.Sign(encrypted)...), nil
}

func (p *legacyProtector) Unprotect(blob []byte) ([]byte, error) {
	encrypted, ok := p.validator.Open(blob)
	if !ok {
		return nil, fmt.Errorf("outer: %w", ErrSignature)
	}

	plain, err := p.cipher.Decrypt(p.iv, encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(plain) < HeaderSize {
		return nil, fmt.Errorf("inner: %w", ErrSignature)
	}

	if _, ok := p.validator.Open(plain[HeaderSize:]); !ok {
		return nil, fmt.Errorf("inner: %w", ErrSignature)
	}
	return plain[:len(plain)-SignatureSize], nil
}

type kdfProtector struct {
	validator *Validator
	cipher    *Cipher
	rnd       io.Reader
}

func (p *kdfProtector) Mode() Mode      { return KDF }
func (p *kdfProtector) HeaderSize() int { return 0 }

// Protect produces iv || CBC(iv, payload) || HMAC(iv || ciphertext) with a fresh iv.
func (p *kdfProtector) Protect(payload []byte) ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(p.rnd, iv); err != nil {
		return nil, fmt.Errorf("read iv: %w", err)
	}

	encrypted, err := p.cipher.Encrypt(iv, payload)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, IVSize+len(encrypted)+SignatureSize)
	out = append(out, iv...)
	out = append(out, encrypted...)
	return append(out, p.validator.Sign(out)...), nil
}

func (p *kdfProtector) Unprotect(blob []byte) ([]byte, error) {
	signed, ok := p.validator.Open(blob)
	if !ok {
		return nil, fmt.Errorf("outer: %w", ErrSignature)
	}
	if len(signed) < IVSize {
		return nil, fmt.Errorf("%w: missing iv", ErrDecrypt)
	}

	plain, err := p.cipher.Decrypt(signed[:IVSize], signed[IVSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plain, nil
}
