package models

import (
	"time"

	"ticketoffice/internal/domain"
)

type Ticket struct {
	ID          int64               `json:"id"`
	TripID      int64               `json:"trip_id"`
	CustomerID  int64               `json:"customer_id"`
	SeatNumber  int                 `json:"seat_number"`
	Status      domain.TicketStatus `json:"status"`
	Price       domain.Money        `json:"price"`
	Salesperson string              `json:"salesperson"`
	Notes       string              `json:"notes,omitempty"`
	SoldAt      time.Time           `json:"sold_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TicketSummary is one row of a ticket search.
type TicketSummary struct {
	TicketID           int64               `json:"ticket_id"`
	TripID             int64               `json:"trip_id"`
	SeatNumber         int                 `json:"seat_number"`
	Status             domain.TicketStatus `json:"status"`
	Price              domain.Money        `json:"price"`
	PassengerName      string              `json:"passenger_name"`
	NationalID         string              `json:"national_id"`
	Phone              string              `json:"phone,omitempty"`
	VehiclePlate       string              `json:"vehicle_plate"`
	CarrierName        string              `json:"carrier_name"`
	OriginStation      string              `json:"origin_station"`
	DestinationStation string              `json:"destination_station"`
	DepartureAt        time.Time           `json:"departure_at"`
	Salesperson        string              `json:"salesperson"`
	SoldAt             time.Time           `json:"sold_at"`
}

// TicketDetail is a ticket with everything needed to display or print it.
type TicketDetail struct {
	Ticket   Ticket   `json:"ticket"`
	Customer Customer `json:"customer"`
	Trip     Trip     `json:"trip"`
	Payment  Payment  `json:"payment"`
}

// TicketFilter drives ticket search. Zero values mean "no constraint".
type TicketFilter struct {
	FreeText  string
	Status    domain.StatusFilter
	TripID    int64
	TripDate  *time.Time
	CarrierID int64
	Page      domain.Pagination
}

// SaleRequest is the input of a single ticket sale.
type SaleRequest struct {
	TripID        int64
	SeatNumber    int
	Customer      CustomerInput
	Price         domain.Money
	Salesperson   string
	PaymentMethod domain.PaymentMethod
	Notes         string
}

type SaleResult struct {
	TicketID int64        `json:"ticket_id"`
	Detail   TicketDetail `json:"detail"`
}

type CancelRequest struct {
	TicketID int64
	Actor    string
	Reason   string
}

type CancelResult struct {
	TicketID       int64               `json:"ticket_id"`
	TripID         int64               `json:"trip_id"`
	SeatNumber     int                 `json:"seat_number"`
	Status         domain.TicketStatus `json:"status"`
	RefundedAmount domain.Money        `json:"refunded_amount"`
	CancelledAt    time.Time           `json:"cancelled_at"`
}
