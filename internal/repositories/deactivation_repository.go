package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
)

// DeactivationRepository backs the one soft-delete rule shared by trips,
// stations, vehicles and carriers.
type DeactivationRepository struct {
	DB *sql.DB
}

var entityTables = map[domain.EntityKind]string{
	domain.EntityTrip:    "trips",
	domain.EntityStation: "stations",
	domain.EntityVehicle: "vehicles",
	domain.EntityCarrier: "carriers",
}

// dependentTripCondition selects the trips that depend on an entity.
func dependentTripCondition(kind domain.EntityKind, id int64) (string, []any, error) {
	switch kind {
	case domain.EntityTrip:
		return "tr.id = ?", []any{id}, nil
	case domain.EntityVehicle:
		return "tr.vehicle_id = ?", []any{id}, nil
	case domain.EntityCarrier:
		return "tr.carrier_id = ?", []any{id}, nil
	case domain.EntityStation:
		return "(tr.origin_station_id = ? OR tr.destination_station_id = ?)", []any{id, id}, nil
	}
	return "", nil, domain.ValidationError{Field: "entity", Msg: fmt.Sprintf("unknown entity %q", kind)}
}

// LockEntity locks the entity row and reports whether it exists.
func (r DeactivationRepository) LockEntity(ctx context.Context, kind domain.EntityKind, id int64) (bool, error) {
	table, ok := entityTables[kind]
	if !ok {
		return false, domain.ValidationError{Field: "entity", Msg: fmt.Sprintf("unknown entity %q", kind)}
	}
	var found int64
	err := intdb.Conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT id FROM "+table+" WHERE id = ? FOR UPDATE", id,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock %s %d: %w", kind, id, err)
	}
	return true, nil
}

// CountActiveUpcomingTickets counts ACTIVE tickets on active trips departing
// after now that depend on the entity.
func (r DeactivationRepository) CountActiveUpcomingTickets(ctx context.Context, kind domain.EntityKind, id int64, now time.Time) (int, error) {
	cond, args, err := dependentTripCondition(kind, id)
	if err != nil {
		return 0, err
	}
	args = append(args, now)

	var n int
	err = intdb.Conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM tickets t
		JOIN trips tr ON tr.id = t.trip_id
		WHERE `+cond+`
		  AND tr.active = 1
		  AND tr.departure_at > ?
		  AND t.status = 'ACTIVE'`, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dependents of %s %d: %w", kind, id, err)
	}
	return n, nil
}

// CountActiveUpcomingTrips counts active trips departing after now that
// depend on a station, vehicle or carrier. A trip has no dependent trips.
func (r DeactivationRepository) CountActiveUpcomingTrips(ctx context.Context, kind domain.EntityKind, id int64, now time.Time) (int, error) {
	if kind == domain.EntityTrip {
		return 0, nil
	}
	cond, args, err := dependentTripCondition(kind, id)
	if err != nil {
		return 0, err
	}
	args = append(args, now)

	var n int
	err = intdb.Conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM trips tr
		WHERE `+cond+`
		  AND tr.active = 1
		  AND tr.departure_at > ?`, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count trips of %s %d: %w", kind, id, err)
	}
	return n, nil
}

func (r DeactivationRepository) SetInactive(ctx context.Context, kind domain.EntityKind, id int64) error {
	table, ok := entityTables[kind]
	if !ok {
		return domain.ValidationError{Field: "entity", Msg: fmt.Sprintf("unknown entity %q", kind)}
	}
	if _, err := intdb.Conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE "+table+" SET active = 0 WHERE id = ?", id,
	); err != nil {
		return fmt.Errorf("deactivate %s %d: %w", kind, id, err)
	}
	return nil
}
