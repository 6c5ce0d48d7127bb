package handlers

import (
	"context"
	"database/sql"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
)

type TicketSeller interface {
	SellTicket(ctx context.Context, req models.SaleRequest) (models.SaleResult, error)
}

type TicketCanceller interface {
	CancelTicket(ctx context.Context, req models.CancelRequest) (models.CancelResult, error)
}

type SeatMapResolver interface {
	ResolveSeatMap(ctx context.Context, tripID int64) (models.SeatMap, error)
}

type OccupancyCalculator interface {
	ComputeOccupancy(ctx context.Context, tripID int64) (models.Occupancy, error)
}

type FareQuoter interface {
	ComputeFare(ctx context.Context, q models.FareQuery) (domain.Money, error)
	QuoteTrip(ctx context.Context, tripID int64, seat int) (domain.Money, error)
}

type TicketFinder interface {
	FindTickets(ctx context.Context, f models.TicketFilter) ([]models.TicketSummary, error)
	FindTicketByID(ctx context.Context, id int64) (models.TicketDetail, error)
}

type DocumentRenderer interface {
	GenerateETicket(ctx context.Context, ticketID int64) ([]byte, string, error)
	GenerateReceipt(ctx context.Context, ticketID int64) ([]byte, string, error)
}

type TripCatalog interface {
	Get(ctx context.Context, id int64) (models.Trip, error)
}

type Deactivator interface {
	Deactivate(ctx context.Context, kind domain.EntityKind, id int64) error
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, models.Agent, error)
}

// DBProbe is satisfied by *sql.DB.
type DBProbe interface {
	intdb.Executor
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// Handlers serves the ticket office API.
type Handlers struct {
	Auth          Authenticator
	Trips         TripCatalog
	SeatMaps      SeatMapResolver
	Occupancy     OccupancyCalculator
	Fares         FareQuoter
	Sales         TicketSeller
	Cancellations TicketCanceller
	Tickets       TicketFinder
	Docs          DocumentRenderer
	Deactivation  Deactivator
	DB            DBProbe
}
