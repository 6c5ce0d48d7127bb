package domain

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies every failure the booking engine can report. Callers
// branch on the kind, never on message text.
type Kind string

const (
	KindInvalidInput             Kind = "invalid_input"
	KindInvalidSeat              Kind = "invalid_seat"
	KindNotFound                 Kind = "not_found"
	KindTripInactive             Kind = "trip_inactive"
	KindTripDeparted             Kind = "trip_departed"
	KindSeatTaken                Kind = "seat_taken"
	KindAlreadyFinal             Kind = "already_final"
	KindCancellationWindowClosed Kind = "cancellation_window_closed"
	KindInvalidCustomer          Kind = "invalid_customer"
	KindRouteNotFound            Kind = "route_not_found"
	KindTransientFailure         Kind = "transient_failure"
	KindUnauthorized             Kind = "unauthorized"
	KindForbidden                Kind = "forbidden"
	KindHasDependents            Kind = "has_dependents"
	KindInternal                 Kind = "internal"
)

type kinded interface {
	Kind() Kind
}

// DomainError carries a kind plus an optional wrapped cause.
type DomainError struct {
	Code Kind
	Msg  string
	Err  error
}

func (e DomainError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return string(e.Code)
	}
}

func (e DomainError) Unwrap() error { return e.Err }
func (e DomainError) Kind() Kind    { return e.Code }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }
func (e NotFoundError) Kind() Kind    { return KindNotFound }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }
func (e ValidationError) Kind() Kind    { return KindInvalidInput }

// CancellationWindowError is returned when departure is closer than the
// minimum cancellation lead time.
type CancellationWindowError struct {
	Remaining time.Duration
	MinLead   time.Duration
}

func (e CancellationWindowError) Error() string {
	remaining := e.Remaining
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("cancellation window closed: departure in %s, cancellations close %s before departure",
		FormatRemaining(remaining), FormatRemaining(e.MinLead))
}

func (e CancellationWindowError) Kind() Kind { return KindCancellationWindowClosed }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }
func (e InternalError) Kind() Kind    { return KindInternal }

func TripInactiveError(tripID int64) error {
	return DomainError{Code: KindTripInactive, Msg: fmt.Sprintf("trip %d is not active", tripID)}
}

func TripDepartedError(tripID int64) error {
	return DomainError{Code: KindTripDeparted, Msg: fmt.Sprintf("trip %d has already departed", tripID)}
}

func InvalidSeatError(seat, capacity int) error {
	return DomainError{Code: KindInvalidSeat, Msg: fmt.Sprintf("seat %d is outside 1..%d", seat, capacity)}
}

func SeatTakenError(tripID int64, seat int, cause error) error {
	return DomainError{Code: KindSeatTaken, Msg: fmt.Sprintf("seat %d on trip %d is already taken", seat, tripID), Err: cause}
}

func AlreadyFinalError(ticketID int64, status TicketStatus) error {
	if status == "" {
		return DomainError{Code: KindAlreadyFinal, Msg: fmt.Sprintf("ticket %d is no longer active", ticketID)}
	}
	return DomainError{Code: KindAlreadyFinal, Msg: fmt.Sprintf("ticket %d is already %s", ticketID, status)}
}

func InvalidCustomerError(msg string, cause error) error {
	return DomainError{Code: KindInvalidCustomer, Msg: msg, Err: cause}
}

func RouteNotFoundError(origin, destination string) error {
	return DomainError{Code: KindRouteNotFound, Msg: fmt.Sprintf("no fare rule for %s -> %s", origin, destination)}
}

func UnauthorizedError(msg string) error {
	return DomainError{Code: KindUnauthorized, Msg: msg}
}

func ForbiddenError(msg string) error {
	return DomainError{Code: KindForbidden, Msg: msg}
}

func HasDependentsError(kind EntityKind, id int64, activeTickets int) error {
	return DomainError{
		Code: KindHasDependents,
		Msg:  fmt.Sprintf("%s %d still has %d active tickets on upcoming trips", kind, id, activeTickets),
	}
}

func HasDependentTripsError(kind EntityKind, id int64, activeTrips int) error {
	return DomainError{
		Code: KindHasDependents,
		Msg:  fmt.Sprintf("%s %d still has %d active upcoming trips", kind, id, activeTrips),
	}
}

func TransientError(cause error) error {
	return DomainError{Code: KindTransientFailure, Msg: "temporary storage failure, safe to retry", Err: cause}
}

// KindOf returns the kind of err, KindInternal for unclassified errors and
// "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// Classified reports whether err already carries a kind.
func Classified(err error) bool {
	var k kinded
	return errors.As(err, &k)
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

func IsValidation(err error) bool {
	return IsKind(err, KindInvalidInput)
}

// FormatRemaining renders durations like "1h30m" or "45m" for agent-facing
// messages.
func FormatRemaining(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
