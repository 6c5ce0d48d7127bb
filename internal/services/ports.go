package services

import (
	"context"
	"time"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
)

// TxRunner runs fn inside one store transaction carried by ctx.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TripReader interface {
	Get(ctx context.Context, id int64) (models.Trip, error)
	GetForUpdate(ctx context.Context, id int64) (models.Trip, error)
}

type SeatReader interface {
	ListActiveSeats(ctx context.Context, tripID int64) ([]models.OccupiedSeat, error)
}

type TicketReader interface {
	Search(ctx context.Context, f models.TicketFilter) ([]models.TicketSummary, error)
	GetDetail(ctx context.Context, id int64) (models.TicketDetail, error)
}

type TicketStore interface {
	TicketReader
	ActiveSeatHolder(ctx context.Context, tripID int64, seat int) (int64, bool, error)
	Insert(ctx context.Context, t models.Ticket) (int64, error)
	GetForUpdate(ctx context.Context, id int64) (models.Ticket, error)
	MarkCancelled(ctx context.Context, id int64, note string, at time.Time) (bool, error)
}

type PaymentStore interface {
	Insert(ctx context.Context, p models.Payment) (int64, error)
	MarkRefunded(ctx context.Context, ticketID int64, at time.Time) error
}

type CustomerResolver interface {
	FindOrCreate(ctx context.Context, in models.CustomerInput, now time.Time) (models.Customer, error)
}

type FareRuleSource interface {
	ListRules(ctx context.Context) ([]models.FareRule, error)
	ListSurcharges(ctx context.Context) ([]models.SeatSurcharge, error)
}

type AgentStore interface {
	GetByUsername(ctx context.Context, username string) (models.Agent, error)
	Upsert(ctx context.Context, a models.Agent) error
}

type DeactivationStore interface {
	LockEntity(ctx context.Context, kind domain.EntityKind, id int64) (bool, error)
	CountActiveUpcomingTickets(ctx context.Context, kind domain.EntityKind, id int64, now time.Time) (int, error)
	CountActiveUpcomingTrips(ctx context.Context, kind domain.EntityKind, id int64, now time.Time) (int, error)
	SetInactive(ctx context.Context, kind domain.EntityKind, id int64) error
}

type UsageMarker interface {
	MarkUsedDeparted(ctx context.Context, now time.Time) (int64, error)
}
