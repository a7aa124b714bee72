package ticket

import (
	"fmt"
	"time"
)

const (
	// FormatVersion is the only serialized layout version understood by this package.
	FormatVersion byte = 0x01
	// DefaultVersion is the ticket version written when the caller supplies none.
	DefaultVersion uint8 = 0x01

	spacer byte = 0xFE
	footer byte = 0xFF

	// format version, ticket version, two dates, spacer, persistent flag, footer
	basePayloadSize = 1 + 1 + tickSize + 1 + tickSize + 1 + 1
)

// UnmarshalOptions controls the policy checks Unmarshal applies while parsing.
type UnmarshalOptions struct {
	// HeaderSize bytes are skipped before the format version byte.
	HeaderSize int
	// RequiredVersion, when nonzero, must equal the embedded ticket version.
	RequiredVersion uint8
	// CheckExpiration rejects tickets whose expiration lies before Now.
	CheckExpiration bool
	Now             time.Time
}

// Size returns the exact number of bytes Marshal produces for t.
func Size(t *Ticket) int {
	return basePayloadSize + StringSize(t.Name) + StringSize(t.CustomData) + StringSize(t.CookiePath)
}

// Marshal serializes t verbatim. The caller resolves defaults before calling.
func Marshal(t *Ticket) ([]byte, error) {
	w := NewWriter(Size(t))

	w.WriteUint8(FormatVersion)
	w.WriteUint8(t.Version)
	if err := w.WriteDate(t.IssueDate); err != nil {
		return nil, fmt.Errorf("issue date: %w", err)
	}
	w.WriteUint8(spacer)
	if err := w.WriteDate(t.ExpirationDate); err != nil {
		return nil, fmt.Errorf("expiration date: %w", err)
	}
	w.WriteBool(t.IsPersistent)

	if err := w.WriteString(t.Name); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if err := w.WriteString(t.CustomData); err != nil {
		return nil, fmt.Errorf("custom data: %w", err)
	}
	if err := w.WriteString(t.CookiePath); err != nil {
		return nil, fmt.Errorf("cookie path: %w", err)
	}
	w.WriteUint8(footer)

	return w.Bytes()
}

// Unmarshal parses a decrypted ticket payload. Bytes after the footer are ignored.
//
// Structural failures are reported as *FormatError; policy rejections as ErrVersionMismatch
// or ErrExpired.
func Unmarshal(data []byte, opts UnmarshalOptions) (*Ticket, error) {
	r := NewReader(data)
	t := &Ticket{}

	if opts.HeaderSize > 0 {
		if err := r.Skip(opts.HeaderSize); err != nil {
			return nil, err
		}
	}
	if err := r.AssertByte(FormatVersion, "format version"); err != nil {
		return nil, err
	}

	version, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if opts.RequiredVersion != 0 && version != opts.RequiredVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrVersionMismatch, version, opts.RequiredVersion)
	}
	t.Version = version

	if t.IssueDate, err = r.ReadDate(); err != nil {
		return nil, err
	}
	if err := r.AssertByte(spacer, "spacer"); err != nil {
		return nil, err
	}
	if t.ExpirationDate, err = r.ReadDate(); err != nil {
		return nil, err
	}
	if opts.CheckExpiration && t.Expired(opts.Now) {
		return nil, ErrExpired
	}

	if t.IsPersistent, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if t.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	if t.CustomData, err = r.ReadString(); err != nil {
		return nil, err
	}
	if t.CookiePath, err = r.ReadString(); err != nil {
		return nil, err
	}
	if err := r.AssertByte(footer, "footer"); err != nil {
		return nil, err
	}

	return t, nil
}
