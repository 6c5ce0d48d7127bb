package services

import (
	"context"

	"ticketoffice/internal/clock"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/logger"
)

// DeactivationService soft-deletes catalog entities. One rule covers every
// kind: an entity with ACTIVE tickets on upcoming active trips stays active,
// and a station, vehicle or carrier also stays active while upcoming active
// trips still use it.
type DeactivationService struct {
	Tx    TxRunner
	Store DeactivationStore
	Clock clock.Clock
}

func (s DeactivationService) Deactivate(ctx context.Context, kind domain.EntityKind, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "is required"}
	}
	now := s.Clock.Now()

	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		found, err := s.Store.LockEntity(ctx, kind, id)
		if err != nil {
			return err
		}
		if !found {
			return domain.NotFoundError{Resource: string(kind)}
		}
		n, err := s.Store.CountActiveUpcomingTickets(ctx, kind, id, now)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.HasDependentsError(kind, id, n)
		}
		trips, err := s.Store.CountActiveUpcomingTrips(ctx, kind, id, now)
		if err != nil {
			return err
		}
		if trips > 0 {
			return domain.HasDependentTripsError(kind, id, trips)
		}
		return s.Store.SetInactive(ctx, kind, id)
	})
	if err != nil {
		err = classify(err, "deactivate "+string(kind))
		logOutcome(ctx, "catalog", "deactivate", err, "entity", kind, "id", id)
		return err
	}

	logger.Event(ctx, "catalog", "deactivate", "entity deactivated", "entity", kind, "id", id)
	return nil
}
