package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/http/middleware"
	"ticketoffice/internal/logger"
)

// ErrorResponse is the error payload of every endpoint.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Hint      string `json:"hint,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type errorMapping struct {
	status int
	hint   string
}

// errorCatalog gives each kind its own status and an agent-facing hint.
var errorCatalog = map[domain.Kind]errorMapping{
	domain.KindInvalidInput:             {http.StatusBadRequest, "check the highlighted fields and try again"},
	domain.KindInvalidSeat:              {http.StatusUnprocessableEntity, "choose a seat shown on the seat map"},
	domain.KindNotFound:                 {http.StatusNotFound, "the record does not exist or was removed"},
	domain.KindTripInactive:             {http.StatusConflict, "this trip is no longer offered, pick another trip"},
	domain.KindTripDeparted:             {http.StatusConflict, "this trip has already left, pick a later trip"},
	domain.KindSeatTaken:                {http.StatusConflict, "refresh the seat map and choose a free seat"},
	domain.KindAlreadyFinal:             {http.StatusConflict, "the ticket was already cancelled or used"},
	domain.KindCancellationWindowClosed: {http.StatusUnprocessableEntity, "cancellations are closed this close to departure"},
	domain.KindInvalidCustomer:          {http.StatusUnprocessableEntity, "verify the passenger name and national id"},
	domain.KindRouteNotFound:            {http.StatusNotFound, "no fare is configured for this route"},
	domain.KindTransientFailure:         {http.StatusServiceUnavailable, "a temporary problem occurred, retry in a moment"},
	domain.KindUnauthorized:             {http.StatusUnauthorized, "sign in again"},
	domain.KindForbidden:                {http.StatusForbidden, "your role cannot perform this action"},
	domain.KindHasDependents:            {http.StatusConflict, "cancel or finish the active tickets first"},
	domain.KindInternal:                 {http.StatusInternalServerError, "unexpected error, contact support with the request id"},
}

const retryAfterSeconds = 1

func respondError(c *gin.Context, status int, code, message, hint string, details any) {
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Hint:      hint,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps an error to its HTTP response by kind.
func RespondDomainError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	if !domain.Classified(err) && intdb.IsTransient(err) {
		kind = domain.KindTransientFailure
	}
	m, ok := errorCatalog[kind]
	if !ok {
		kind = domain.KindInternal
		m = errorCatalog[kind]
	}

	msg := err.Error()
	var details any
	switch kind {
	case domain.KindInternal:
		logger.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		msg = "internal error"
	case domain.KindTransientFailure:
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		msg = "temporary storage failure, safe to retry"
	case domain.KindCancellationWindowClosed:
		var we domain.CancellationWindowError
		if errors.As(err, &we) {
			remaining := we.Remaining
			if remaining < 0 {
				remaining = 0
			}
			details = gin.H{
				"remaining_minutes": int(remaining.Minutes()),
				"min_lead_minutes":  int(we.MinLead.Minutes()),
			}
		}
	}
	respondError(c, m.status, string(kind), msg, m.hint, details)
}
