package ticket

import (
	"errors"
	"fmt"
)

var (
	// ErrExpired is returned by Unmarshal when expiration checking is enabled and the
	// ticket expiration lies before the supplied clock.
	ErrExpired = errors.New("ticket expired")
	// ErrVersionMismatch is returned by Unmarshal when the embedded ticket version does
	// not equal the required version.
	ErrVersionMismatch = errors.New("ticket version mismatch")
	// ErrFieldTooLong is returned by the writer when a string exceeds 255 UTF-16 code units.
	ErrFieldTooLong = errors.New("ticket field too long")
	// ErrDateOutOfRange is returned by the writer for a date that has no tick count
	// between 0001-01-01 and 9999-12-31.
	ErrDateOutOfRange = errors.New("ticket date out of range")
)

// FormatError reports a structural problem in a ticket payload: a truncated read or a
// fixed marker byte that does not hold its expected value.
type FormatError struct {
	Offset      int
	Description string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ticket: invalid %s at offset %d", e.Description, e.Offset)
}
