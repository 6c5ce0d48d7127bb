package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticketoffice/internal/clock"
	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/logger"
	"ticketoffice/internal/messaging"
	"ticketoffice/internal/metrics"
	"ticketoffice/internal/utils"
)

const maxNationalIDLen = 20

// BookingService sells single tickets. A sale is one transaction: the trip
// row is locked, the seat checked, the customer resolved, then the ticket
// and its payment inserted.
type BookingService struct {
	Tx        TxRunner
	Trips     TripReader
	Tickets   TicketStore
	Payments  PaymentStore
	Customers CustomerResolver
	Clock     clock.Clock
	Events    messaging.Publisher
}

func (s BookingService) SellTicket(ctx context.Context, req models.SaleRequest) (models.SaleResult, error) {
	req = normalizeSale(req)

	res, err := s.sell(ctx, req)
	metrics.ObserveSale(string(domain.KindOf(err)))
	if err != nil {
		logOutcome(ctx, "booking", "sell_ticket", err,
			"trip_id", req.TripID, "seat_number", req.SeatNumber, "salesperson", req.Salesperson)
		return models.SaleResult{}, err
	}

	logger.Event(ctx, "booking", "sell_ticket", "ticket sold",
		"ticket_id", res.TicketID, "trip_id", req.TripID, "seat_number", req.SeatNumber,
		"price", req.Price.String(), "salesperson", req.Salesperson)

	messaging.PublishBestEffort(ctx, s.Events, messaging.SubjectTicketSold, messaging.TicketEvent{
		TicketID:    res.TicketID,
		TripID:      req.TripID,
		SeatNumber:  req.SeatNumber,
		Status:      domain.TicketActive,
		Price:       req.Price,
		Salesperson: req.Salesperson,
		OccurredAt:  res.Detail.Ticket.SoldAt,
		RequestID:   logger.RequestIDFromContext(ctx),
	})
	return res, nil
}

func (s BookingService) sell(ctx context.Context, req models.SaleRequest) (models.SaleResult, error) {
	if err := validateSale(req); err != nil {
		return models.SaleResult{}, err
	}

	now := s.Clock.Now()
	var result models.SaleResult

	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		trip, err := s.Trips.GetForUpdate(ctx, req.TripID)
		if err != nil {
			return err
		}
		if !trip.Active {
			return domain.TripInactiveError(trip.ID)
		}
		if trip.HasDeparted(now) {
			return domain.TripDepartedError(trip.ID)
		}
		if !trip.SeatInRange(req.SeatNumber) {
			return domain.InvalidSeatError(req.SeatNumber, trip.SeatCapacity)
		}

		if _, taken, err := s.Tickets.ActiveSeatHolder(ctx, trip.ID, req.SeatNumber); err != nil {
			return err
		} else if taken {
			return domain.SeatTakenError(trip.ID, req.SeatNumber, nil)
		}

		customer, err := s.resolveCustomer(ctx, req.Customer, now)
		if err != nil {
			return err
		}

		ticketID, err := s.Tickets.Insert(ctx, models.Ticket{
			TripID:      trip.ID,
			CustomerID:  customer.ID,
			SeatNumber:  req.SeatNumber,
			Status:      domain.TicketActive,
			Price:       req.Price,
			Salesperson: req.Salesperson,
			Notes:       req.Notes,
			SoldAt:      now,
		})
		if err != nil {
			return err
		}

		if _, err := s.Payments.Insert(ctx, models.Payment{
			TicketID:  ticketID,
			Amount:    req.Price,
			Method:    req.PaymentMethod,
			Status:    domain.PaymentSuccessful,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		detail, err := s.Tickets.GetDetail(ctx, ticketID)
		if err != nil {
			return err
		}
		result = models.SaleResult{TicketID: ticketID, Detail: detail}
		return nil
	})
	if err != nil {
		// A duplicate on the active seat key can also surface at commit.
		if !domain.Classified(err) && intdb.IsDuplicateKey(err) {
			return models.SaleResult{}, domain.SeatTakenError(req.TripID, req.SeatNumber, err)
		}
		return models.SaleResult{}, classify(err, "sell ticket")
	}
	return result, nil
}

// resolveCustomer finds or creates the customer by national id. A stored
// customer whose name differs from the submitted one is rejected rather than
// silently reused.
func (s BookingService) resolveCustomer(ctx context.Context, in models.CustomerInput, now time.Time) (models.Customer, error) {
	c, err := s.Customers.FindOrCreate(ctx, in, now)
	if err != nil {
		if intdb.IsTransient(err) {
			return models.Customer{}, err
		}
		return models.Customer{}, domain.InvalidCustomerError("customer lookup failed", err)
	}
	if !utils.SameName(c.FullName, in.FullName) {
		return models.Customer{}, domain.InvalidCustomerError(
			fmt.Sprintf("national id %s is registered under a different name", in.NationalID), nil)
	}
	return c, nil
}

func normalizeSale(req models.SaleRequest) models.SaleRequest {
	req.Customer.FullName = utils.NormalizeSpace(req.Customer.FullName)
	req.Customer.NationalID = strings.TrimSpace(req.Customer.NationalID)
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)
	req.Customer.Email = strings.TrimSpace(req.Customer.Email)
	req.Salesperson = strings.TrimSpace(req.Salesperson)
	req.Notes = strings.TrimSpace(req.Notes)
	return req
}

// validateSale runs the checks that need no storage: required fields first,
// then the price sign.
func validateSale(req models.SaleRequest) error {
	switch {
	case req.Customer.NationalID == "":
		return domain.ValidationError{Field: "customer.national_id", Msg: "is required"}
	case req.Customer.FullName == "":
		return domain.ValidationError{Field: "customer.full_name", Msg: "is required"}
	case req.TripID <= 0:
		return domain.ValidationError{Field: "trip_id", Msg: "is required"}
	case req.SeatNumber == 0:
		return domain.ValidationError{Field: "seat_number", Msg: "is required"}
	case req.Price == 0:
		return domain.ValidationError{Field: "price", Msg: "is required"}
	case req.Salesperson == "":
		return domain.ValidationError{Field: "salesperson", Msg: "is required"}
	case req.PaymentMethod == "":
		return domain.ValidationError{Field: "payment_method", Msg: "is required"}
	}
	if _, ok := domain.ParsePaymentMethod(string(req.PaymentMethod)); !ok {
		return domain.ValidationError{Field: "payment_method", Msg: fmt.Sprintf("unsupported method %q", req.PaymentMethod)}
	}
	if len(req.Customer.NationalID) > maxNationalIDLen {
		return domain.ValidationError{Field: "customer.national_id", Msg: "is too long"}
	}
	if req.Price < 0 {
		return domain.ValidationError{Field: "price", Msg: "must be greater than zero"}
	}
	if req.Price > domain.MaxAmount {
		return domain.ValidationError{Field: "price", Msg: fmt.Sprintf("must not exceed %s", domain.MaxAmount)}
	}
	return nil
}

// logOutcome logs expected business rejections at warn and everything else
// at error.
func logOutcome(ctx context.Context, module, action string, err error, args ...any) {
	l := logger.WithContext(ctx).With("module", module, "action", action, "kind", string(domain.KindOf(err)))
	switch domain.KindOf(err) {
	case domain.KindInternal:
		l.Error("operation failed", append(args, "error", err)...)
	case domain.KindTransientFailure:
		l.Warn("operation failed, retryable", append(args, "error", err)...)
	default:
		l.Warn("operation rejected", append(args, "reason", err.Error())...)
	}
}
