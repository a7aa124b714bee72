package ticket

import (
	"encoding/binary"
	"time"
	"unicode/utf16"

	"golang.org/x/crypto/cryptobyte"
)

const (
	bytesPerChar            = 2
	ticksPerMillisecond     = 10000
	millisecondsEpochOffset = 62135596800000
	tickSize                = 8
)

// Reader is a forward-only cursor over an immutable byte slice.
//
// A Reader is owned by a single decode call; it is not safe for concurrent use.
type Reader struct {
	data []byte
	s    cryptobyte.String
}

// NewReader returns a Reader positioned at the first byte of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, s: cryptobyte.String(data)}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return len(r.data) - len(r.s)
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.s)
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if !r.s.Skip(n) {
		return r.truncated("header")
	}
	return nil
}

// AssertByte consumes one byte and fails with a *FormatError naming description when
// it differs from expected.
func (r *Reader) AssertByte(expected byte, description string) error {
	at := r.Offset()
	got, err := r.ReadByte()
	if err != nil || got != expected {
		return &FormatError{Offset: at, Description: description}
	}
	return nil
}

// ReadByte consumes one byte.
func (r *Reader) ReadByte() (byte, error) {
	var b uint8
	if !r.s.ReadUint8(&b) {
		return 0, r.truncated("byte")
	}
	return b, nil
}

// ReadBool consumes one byte; any nonzero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadTicks consumes a signed 64-bit little-endian tick count.
func (r *Reader) ReadTicks() (int64, error) {
	var raw []byte
	if !r.s.ReadBytes(&raw, tickSize) {
		return 0, r.truncated("tick count")
	}
	return int64(binary.LittleEndian.Uint64(raw)), nil
}

// ReadDate consumes a tick count and converts it to a UTC time with millisecond
// precision. Sub-millisecond ticks are truncated.
func (r *Reader) ReadDate() (time.Time, error) {
	ticks, err := r.ReadTicks()
	if err != nil {
		return time.Time{}, err
	}
	return TicksToTime(ticks), nil
}

// ReadString consumes a length-prefixed UTF-16LE string. A zero length yields "".
func (r *Reader) ReadString() (string, error) {
	count, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", nil
	}

	var raw []byte
	if !r.s.ReadBytes(&raw, int(count)*bytesPerChar) {
		return "", r.truncated("string")
	}

	units := make([]uint16, count)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[i*bytesPerChar:])
	}
	return string(utf16.Decode(units)), nil
}

func (r *Reader) truncated(what string) error {
	return &FormatError{Offset: r.Offset(), Description: "truncated " + what}
}

// TicksToTime converts 100ns ticks since 0001-01-01 to a UTC time, truncated to the
// millisecond.
func TicksToTime(ticks int64) time.Time {
	return time.UnixMilli(ticks/ticksPerMillisecond - millisecondsEpochOffset).UTC()
}

// TimeToTicks is the inverse of TicksToTime; precision below one millisecond is dropped.
// The result only fits in an int64 for years 1 through 9999, the range WriteDate accepts.
func TimeToTicks(t time.Time) int64 {
	return (t.UnixMilli() + millisecondsEpochOffset) * ticksPerMillisecond
}
