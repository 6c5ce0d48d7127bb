package models

// OccupiedSeat is a seat held by an ACTIVE ticket.
type OccupiedSeat struct {
	SeatNumber    int    `json:"seat_number"`
	TicketID      int64  `json:"ticket_id"`
	PassengerName string `json:"passenger_name"`
}

type SeatMap struct {
	TripID        int64          `json:"trip_id"`
	SeatCapacity  int            `json:"seat_capacity"`
	Occupied      []OccupiedSeat `json:"occupied"`
	Free          []int          `json:"free"`
	OccupiedCount int            `json:"occupied_count"`
	FreeCount     int            `json:"free_count"`
}

type Occupancy struct {
	TripID       int64   `json:"trip_id"`
	SeatCapacity int     `json:"seat_capacity"`
	Occupied     int     `json:"occupied"`
	Percentage   float64 `json:"percentage"`
}
