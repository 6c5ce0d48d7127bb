package services

import (
	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
)

// classify turns raw storage errors into domain kinds. Errors that already
// carry a kind pass through unchanged.
func classify(err error, op string) error {
	if err == nil || domain.Classified(err) {
		return err
	}
	if intdb.IsTransient(err) {
		return domain.TransientError(err)
	}
	return domain.InternalError{Msg: op + " failed", Err: err}
}
