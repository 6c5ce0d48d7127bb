package services

import (
	"context"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/utils"
)

type FareService struct {
	Rules FareRuleSource
	Trips TripReader
}

// Table loads the current fare rules into an immutable FareTable.
func (s FareService) Table(ctx context.Context) (utils.FareTable, error) {
	rules, err := s.Rules.ListRules(ctx)
	if err != nil {
		return utils.FareTable{}, classify(err, "load fare rules")
	}
	surcharges, err := s.Rules.ListSurcharges(ctx)
	if err != nil {
		return utils.FareTable{}, classify(err, "load seat surcharges")
	}
	return utils.NewFareTable(rules, surcharges), nil
}

func (s FareService) ComputeFare(ctx context.Context, q models.FareQuery) (domain.Money, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return 0, err
	}
	return table.Compute(q.OriginCity, q.DestinationCity, q.CarrierID, q.SeatNumber)
}

// QuoteTrip prices a seat on an existing trip using the trip's cities and
// carrier.
func (s FareService) QuoteTrip(ctx context.Context, tripID int64, seat int) (domain.Money, error) {
	trip, err := s.Trips.Get(ctx, tripID)
	if err != nil {
		return 0, classify(err, "quote trip fare")
	}
	if !trip.SeatInRange(seat) {
		return 0, domain.InvalidSeatError(seat, trip.SeatCapacity)
	}
	return s.ComputeFare(ctx, models.FareQuery{
		OriginCity:      trip.OriginCity,
		DestinationCity: trip.DestinationCity,
		CarrierID:       trip.CarrierID,
		SeatNumber:      seat,
	})
}
