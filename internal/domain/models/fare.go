package models

import "ticketoffice/internal/domain"

// FareRule prices a city pair. CarrierID 0 applies to every carrier.
type FareRule struct {
	ID              int64
	OriginCity      string
	DestinationCity string
	CarrierID       int64
	Amount          domain.Money
}

// SeatSurcharge adds Amount to seats SeatFrom..SeatTo. CarrierID 0 applies
// to every carrier.
type SeatSurcharge struct {
	ID        int64
	CarrierID int64
	SeatFrom  int
	SeatTo    int
	Amount    domain.Money
}

type FareQuery struct {
	OriginCity      string `json:"origin_city"`
	DestinationCity string `json:"destination_city"`
	CarrierID       int64  `json:"carrier_id"`
	SeatNumber      int    `json:"seat_number"`
}
