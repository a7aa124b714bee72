package ticket

import "time"

// Ticket is the identity record carried inside a forms-authentication cookie.
//
// Ticket values are plain data; an empty CustomData or CookiePath is what a zero-length
// wire string decodes to.
type Ticket struct {
	Version        uint8
	IssueDate      time.Time
	ExpirationDate time.Time
	IsPersistent   bool
	Name           string
	CustomData     string
	CookiePath     string
}

// Expired reports whether the ticket expiration lies strictly before now.
func (t *Ticket) Expired(now time.Time) bool {
	return t.ExpirationDate.Before(now)
}
