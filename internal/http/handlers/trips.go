package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketoffice/internal/domain/models"
)

// GET /api/trips/:id
func (h *Handlers) GetTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	trip, err := h.Trips.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GET /api/trips/:id/seats
func (h *Handlers) GetSeatMap(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sm, err := h.SeatMaps.ResolveSeatMap(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sm)
}

// GET /api/trips/:id/occupancy
func (h *Handlers) GetOccupancy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	occ, err := h.Occupancy.ComputeOccupancy(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

// GET /api/trips/:id/fare?seat=N
func (h *Handlers) QuoteTripFare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	seat, ok := queryInt(c, "seat", 0)
	if !ok {
		return
	}
	amount, err := h.Fares.QuoteTrip(c.Request.Context(), id, int(seat))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip_id": id, "seat_number": seat, "amount": amount})
}

type fareQuoteRequest struct {
	OriginCity      string `json:"origin_city"`
	DestinationCity string `json:"destination_city"`
	CarrierID       int64  `json:"carrier_id"`
	SeatNumber      int    `json:"seat_number"`
}

// POST /api/fares/quote
func (h *Handlers) QuoteFare(c *gin.Context) {
	var req fareQuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, err := h.Fares.ComputeFare(c.Request.Context(), models.FareQuery{
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		CarrierID:       req.CarrierID,
		SeatNumber:      req.SeatNumber,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount})
}
