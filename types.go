package aspxauth

import (
	"time"

	"github.com/MrEthical07/aspxauth/ticket"
)

// Ticket is a decoded forms-authentication ticket.
type Ticket = ticket.Ticket

// TicketRequest is the partial ticket accepted by Encode. Zero values select the
// configured defaults; IsPersistent is a pointer so that an explicit false can be
// told apart from an absent value.
type TicketRequest struct {
	Version        uint8
	IssueDate      time.Time
	ExpirationDate time.Time
	IsPersistent   *bool
	Name           string
	CustomData     string
	CookiePath     string
}

// Bool returns a pointer to v, for TicketRequest.IsPersistent.
func Bool(v bool) *bool {
	return &v
}
