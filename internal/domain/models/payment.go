package models

import (
	"time"

	"ticketoffice/internal/domain"
)

// Payment is the 1:1 payment record of a ticket.
type Payment struct {
	ID        int64                `json:"id"`
	TicketID  int64                `json:"ticket_id"`
	Amount    domain.Money         `json:"amount"`
	Method    domain.PaymentMethod `json:"method"`
	Status    domain.PaymentStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}
