package aspxauth

import (
	"errors"

	"github.com/MrEthical07/aspxauth/ticket"
)

var (
	// ErrTicketInvalid is returned by Decode for any cookie that fails signature, decryption,
	// structure or version checks. The specific cause is only reported through metrics and logs.
	ErrTicketInvalid = errors.New("invalid ticket")
	// ErrTicketExpired is returned by Decode when expiration checking is enabled and the ticket
	// expiration lies in the past.
	ErrTicketExpired = errors.New("ticket expired")
	// ErrTicketVersionMismatch is returned by Encode when the request names a ticket version
	// other than the configured one.
	ErrTicketVersionMismatch = errors.New("invalid ticket version")
	// ErrFieldTooLong is returned by Encode when a string field exceeds 255 UTF-16 code units.
	ErrFieldTooLong = ticket.ErrFieldTooLong
	// ErrDateOutOfRange is returned by Encode when a date falls outside 0001-01-01 through
	// 9999-12-31 and so has no tick representation.
	ErrDateOutOfRange = ticket.ErrDateOutOfRange
	// ErrEngineNotReady is returned by methods called on a nil or zero Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
