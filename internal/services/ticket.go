package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"symposium/internal/domain"
)

type ticketService struct {
	registrations domain.RegistrationRepository
	signer        domain.TicketSigner
	now           func() time.Time
}

// NewTicketService returns a TicketService that signs the identity's registered events.
func NewTicketService(registrations domain.RegistrationRepository, signer domain.TicketSigner) domain.TicketService {
	return &ticketService{registrations: registrations, signer: signer, now: time.Now}
}

// Issue returns ErrNotFound when the identity has no registered events.
func (s *ticketService) Issue(ctx context.Context, identity *domain.Identity) (*domain.Ticket, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	rec, err := s.registrations.Get(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	events := rec.EventSet().Names()
	if len(events) == 0 {
		return nil, domain.ErrNotFound
	}
	email := rec.Email
	if email == "" {
		email = identity.Email
	}
	issuedAt := s.now().UTC().Truncate(time.Second)
	token, err := s.signer.SignTicket(identity.ID, email, events, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("sign ticket: %w", err)
	}
	return &domain.Ticket{
		Identity: identity.ID,
		Email:    email,
		Events:   events,
		Token:    token,
		IssuedAt: issuedAt,
	}, nil
}
