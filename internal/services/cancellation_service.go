package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticketoffice/internal/clock"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/logger"
	"ticketoffice/internal/messaging"
	"ticketoffice/internal/metrics"
	"ticketoffice/internal/utils"
)

// DefaultMinCancelLead applies when no lead time is configured.
const DefaultMinCancelLead = 2 * time.Hour

// CancellationService cancels ACTIVE tickets up to MinLead before departure.
type CancellationService struct {
	Tx       TxRunner
	Trips    TripReader
	Tickets  TicketStore
	Payments PaymentStore
	Clock    clock.Clock
	MinLead  time.Duration
	Events   messaging.Publisher
}

func (s CancellationService) minLead() time.Duration {
	if s.MinLead > 0 {
		return s.MinLead
	}
	return DefaultMinCancelLead
}

func (s CancellationService) CancelTicket(ctx context.Context, req models.CancelRequest) (models.CancelResult, error) {
	res, err := s.cancel(ctx, req)
	metrics.ObserveCancellation(string(domain.KindOf(err)))
	if err != nil {
		logOutcome(ctx, "cancellation", "cancel_ticket", err, "ticket_id", req.TicketID, "actor", req.Actor)
		return models.CancelResult{}, err
	}

	logger.Event(ctx, "cancellation", "cancel_ticket", "ticket cancelled",
		"ticket_id", res.TicketID, "trip_id", res.TripID, "seat_number", res.SeatNumber,
		"refunded", res.RefundedAmount.String(), "actor", req.Actor)

	messaging.PublishBestEffort(ctx, s.Events, messaging.SubjectTicketCancelled, messaging.TicketEvent{
		TicketID:    res.TicketID,
		TripID:      res.TripID,
		SeatNumber:  res.SeatNumber,
		Status:      domain.TicketCancelled,
		Price:       res.RefundedAmount,
		Salesperson: req.Actor,
		OccurredAt:  res.CancelledAt,
		RequestID:   logger.RequestIDFromContext(ctx),
	})
	return res, nil
}

func (s CancellationService) cancel(ctx context.Context, req models.CancelRequest) (models.CancelResult, error) {
	if req.TicketID <= 0 {
		return models.CancelResult{}, domain.ValidationError{Field: "ticket_id", Msg: "is required"}
	}

	now := s.Clock.Now()
	var result models.CancelResult

	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.Tickets.GetForUpdate(ctx, req.TicketID)
		if err != nil {
			return err
		}
		if ticket.Status != domain.TicketActive {
			return domain.AlreadyFinalError(ticket.ID, ticket.Status)
		}

		trip, err := s.Trips.Get(ctx, ticket.TripID)
		if err != nil {
			return err
		}
		remaining := trip.DepartureAt.Sub(now)
		if remaining < s.minLead() {
			return domain.CancellationWindowError{Remaining: remaining, MinLead: s.minLead()}
		}

		ok, err := s.Tickets.MarkCancelled(ctx, ticket.ID, cancellationNote(now, req), now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.AlreadyFinalError(ticket.ID, "")
		}
		if err := s.Payments.MarkRefunded(ctx, ticket.ID, now); err != nil {
			return err
		}

		result = models.CancelResult{
			TicketID:       ticket.ID,
			TripID:         ticket.TripID,
			SeatNumber:     ticket.SeatNumber,
			Status:         domain.TicketCancelled,
			RefundedAmount: ticket.Price,
			CancelledAt:    now,
		}
		return nil
	})
	if err != nil {
		return models.CancelResult{}, classify(err, "cancel ticket")
	}
	return result, nil
}

func cancellationNote(now time.Time, req models.CancelRequest) string {
	note := fmt.Sprintf("[%s] cancelled", utils.FormatDateTime(now))
	if actor := strings.TrimSpace(req.Actor); actor != "" {
		note += " by " + actor
	}
	if reason := utils.NormalizeSpace(req.Reason); reason != "" {
		note += ": " + reason
	}
	return note
}
