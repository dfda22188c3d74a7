package domain

import (
	"context"
	"time"
)

// Ticket is the signed payload a client renders as a QR code.
// swagger:model Ticket
type Ticket struct {
	Identity string    `json:"identity"`
	Email    string    `json:"email"`
	Events   []string  `json:"events"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// TicketSigner signs ticket payloads.
type TicketSigner interface {
	SignTicket(identity, email string, events []string, issuedAt time.Time) (string, error)
}

// TicketService builds tickets for registered attendees.
type TicketService interface {
	Issue(ctx context.Context, identity *Identity) (*Ticket, error)
}
