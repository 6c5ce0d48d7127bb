package models

import (
	"time"

	"ticketoffice/internal/domain"
)

// Trip is the read-only catalog view of a scheduled run.
type Trip struct {
	ID                   int64        `json:"id"`
	CarrierID            int64        `json:"carrier_id"`
	CarrierName          string       `json:"carrier_name"`
	VehicleID            int64        `json:"vehicle_id"`
	VehiclePlate         string       `json:"vehicle_plate"`
	SeatCapacity         int          `json:"seat_capacity"`
	OriginStationID      int64        `json:"origin_station_id"`
	OriginStation        string       `json:"origin_station"`
	OriginCity           string       `json:"origin_city"`
	DestinationStationID int64        `json:"destination_station_id"`
	DestinationStation   string       `json:"destination_station"`
	DestinationCity      string       `json:"destination_city"`
	DepartureAt          time.Time    `json:"departure_at"`
	ArrivalAt            time.Time    `json:"arrival_at"`
	Fare                 domain.Money `json:"fare"`
	Active               bool         `json:"active"`
}

// HasDeparted reports whether departure is not strictly after now.
func (t Trip) HasDeparted(now time.Time) bool {
	return !t.DepartureAt.After(now)
}

func (t Trip) SeatInRange(seat int) bool {
	return seat >= 1 && seat <= t.SeatCapacity
}
