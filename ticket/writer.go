package ticket

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unicode/utf16"

	"golang.org/x/crypto/cryptobyte"
)

const maxStringUnits = 255

var (
	minDate = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC)
)

// Writer appends ticket primitives into a buffer whose capacity is fixed at
// construction. Writing past that capacity fails instead of reallocating.
type Writer struct {
	b      *cryptobyte.Builder
	offset int
}

// NewWriter returns a Writer that can hold exactly size bytes.
func NewWriter(size int) *Writer {
	return &Writer{b: cryptobyte.NewFixedBuilder(make([]byte, 0, size))}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int {
	return w.offset
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(val []byte) {
	w.b.AddBytes(val)
	w.offset += len(val)
}

// WriteUint8 appends one byte.
func (w *Writer) WriteUint8(val byte) {
	w.b.AddUint8(val)
	w.offset++
}

// WriteBool appends 0x01 for true and 0x00 for false.
func (w *Writer) WriteBool(val bool) {
	if val {
		w.WriteUint8(0x01)
		return
	}
	w.WriteUint8(0x00)
}

// WriteTicks appends a signed 64-bit little-endian tick count.
func (w *Writer) WriteTicks(ticks int64) {
	var raw [tickSize]byte
	binary.LittleEndian.PutUint64(raw[:], uint64(ticks))
	w.WriteBytes(raw[:])
}

// WriteDate appends t as a tick count with millisecond precision. Times outside
// 0001-01-01 through 9999-12-31 fail with ErrDateOutOfRange and write nothing.
func (w *Writer) WriteDate(t time.Time) error {
	if t.Before(minDate) || t.After(maxDate) {
		return fmt.Errorf("%w: %s", ErrDateOutOfRange, t.UTC().Format(time.RFC3339))
	}
	w.WriteTicks(TimeToTicks(t))
	return nil
}

// WriteString appends a one-byte code unit count followed by the UTF-16LE code units.
// An empty string is written as a single zero byte.
func (w *Writer) WriteString(val string) error {
	units := utf16.Encode([]rune(val))
	if len(units) > maxStringUnits {
		return fmt.Errorf("%w: %d code units, max %d", ErrFieldTooLong, len(units), maxStringUnits)
	}

	w.WriteUint8(byte(len(units)))
	if len(units) == 0 {
		return nil
	}

	raw := make([]byte, len(units)*bytesPerChar)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*bytesPerChar:], u)
	}
	w.WriteBytes(raw)
	return nil
}

// Bytes returns the written buffer, or an error when a write overran the fixed capacity.
func (w *Writer) Bytes() ([]byte, error) {
	out, err := w.b.Bytes()
	if err != nil {
		return nil, errors.New("ticket: writer capacity exceeded")
	}
	return out, nil
}

// StringSize returns the number of bytes WriteString emits for val.
func StringSize(val string) int {
	units := 0
	for _, r := range val {
		units += utf16.RuneLen(r)
	}
	return 1 + units*bytesPerChar
}
