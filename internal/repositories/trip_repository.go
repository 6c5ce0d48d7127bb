package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
)

// TripRepository is the read side of the trip catalog.
type TripRepository struct {
	DB *sql.DB
}

const tripSelect = `
	SELECT t.id, t.carrier_id, c.name, t.vehicle_id, v.plate, t.seat_capacity,
	       t.origin_station_id, os.name, os.city,
	       t.destination_station_id, ds.name, ds.city,
	       t.departure_at, t.arrival_at, t.fare, t.active
	FROM trips t
	JOIN carriers c ON c.id = t.carrier_id
	JOIN vehicles v ON v.id = t.vehicle_id
	JOIN stations os ON os.id = t.origin_station_id
	JOIN stations ds ON ds.id = t.destination_station_id
	WHERE t.id = ?`

func (r TripRepository) Get(ctx context.Context, id int64) (models.Trip, error) {
	return r.get(ctx, tripSelect, id)
}

// GetForUpdate locks the trip row until the surrounding transaction ends.
// Every sale on the trip takes this lock first, so sales on one trip run one
// at a time.
func (r TripRepository) GetForUpdate(ctx context.Context, id int64) (models.Trip, error) {
	return r.get(ctx, tripSelect+" FOR UPDATE OF t", id)
}

func (r TripRepository) get(ctx context.Context, query string, id int64) (models.Trip, error) {
	var t models.Trip
	err := intdb.Conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.CarrierID, &t.CarrierName, &t.VehicleID, &t.VehiclePlate, &t.SeatCapacity,
		&t.OriginStationID, &t.OriginStation, &t.OriginCity,
		&t.DestinationStationID, &t.DestinationStation, &t.DestinationCity,
		&t.DepartureAt, &t.ArrivalAt, &t.Fare, &t.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, domain.NotFoundError{Resource: "trip", Err: err}
	}
	if err != nil {
		return models.Trip{}, fmt.Errorf("get trip %d: %w", id, err)
	}
	return t, nil
}
