package services

import (
	"context"
	"math"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
)

// SeatMapService derives a trip's seat map from its ACTIVE tickets.
type SeatMapService struct {
	Trips TripReader
	Seats SeatReader
}

func (s SeatMapService) ResolveSeatMap(ctx context.Context, tripID int64) (models.SeatMap, error) {
	if tripID <= 0 {
		return models.SeatMap{}, domain.ValidationError{Field: "trip_id", Msg: "is required"}
	}
	trip, err := s.Trips.Get(ctx, tripID)
	if err != nil {
		return models.SeatMap{}, classify(err, "resolve seat map")
	}
	held, err := s.Seats.ListActiveSeats(ctx, tripID)
	if err != nil {
		return models.SeatMap{}, classify(err, "resolve seat map")
	}
	return BuildSeatMap(trip, held), nil
}

// BuildSeatMap splits 1..capacity into occupied and free seats.
func BuildSeatMap(trip models.Trip, held []models.OccupiedSeat) models.SeatMap {
	taken := make(map[int]bool, len(held))
	occupied := make([]models.OccupiedSeat, 0, len(held))
	for _, h := range held {
		if !trip.SeatInRange(h.SeatNumber) || taken[h.SeatNumber] {
			continue
		}
		taken[h.SeatNumber] = true
		occupied = append(occupied, h)
	}

	free := make([]int, 0, trip.SeatCapacity-len(occupied))
	for seat := 1; seat <= trip.SeatCapacity; seat++ {
		if !taken[seat] {
			free = append(free, seat)
		}
	}

	return models.SeatMap{
		TripID:        trip.ID,
		SeatCapacity:  trip.SeatCapacity,
		Occupied:      occupied,
		Free:          free,
		OccupiedCount: len(occupied),
		FreeCount:     len(free),
	}
}

// OccupancyService reports occupancy from the same seat map the agents see.
type OccupancyService struct {
	SeatMaps SeatMapService
}

func (s OccupancyService) ComputeOccupancy(ctx context.Context, tripID int64) (models.Occupancy, error) {
	sm, err := s.SeatMaps.ResolveSeatMap(ctx, tripID)
	if err != nil {
		return models.Occupancy{}, err
	}
	return models.Occupancy{
		TripID:       sm.TripID,
		SeatCapacity: sm.SeatCapacity,
		Occupied:     sm.OccupiedCount,
		Percentage:   OccupancyPercent(sm.OccupiedCount, sm.SeatCapacity),
	}, nil
}

// OccupancyPercent is occupied/capacity*100 rounded to one decimal.
func OccupancyPercent(occupied, capacity int) float64 {
	if capacity <= 0 || occupied <= 0 {
		return 0
	}
	if occupied >= capacity {
		return 100
	}
	return math.Round(float64(occupied)*1000/float64(capacity)) / 10
}
