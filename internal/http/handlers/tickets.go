package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/http/middleware"
	"ticketoffice/internal/utils"
)

type sellTicketRequest struct {
	TripID        int64                `json:"trip_id"`
	SeatNumber    int                  `json:"seat_number"`
	Customer      models.CustomerInput `json:"customer"`
	Price         domain.Money         `json:"price"`
	Salesperson   string               `json:"salesperson"`
	PaymentMethod string               `json:"payment_method"`
	Notes         string               `json:"notes"`
}

// POST /api/tickets
func (h *Handlers) SellTicket(c *gin.Context) {
	var req sellTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	salesperson := strings.TrimSpace(req.Salesperson)
	if salesperson == "" {
		if agent, ok := middleware.Agent(c); ok {
			salesperson = agent.Username
		}
	}

	res, err := h.Sales.SellTicket(c.Request.Context(), models.SaleRequest{
		TripID:        req.TripID,
		SeatNumber:    req.SeatNumber,
		Customer:      req.Customer,
		Price:         req.Price,
		Salesperson:   salesperson,
		PaymentMethod: domain.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		Notes:         req.Notes,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type cancelTicketRequest struct {
	Reason string `json:"reason"`
}

// POST /api/tickets/:id/cancel
func (h *Handlers) CancelTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req cancelTicketRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondDomainError(c, domain.ValidationError{Field: "body", Msg: "malformed payload", Err: err})
			return
		}
	}
	actor := ""
	if agent, ok := middleware.Agent(c); ok {
		actor = agent.Username
	}

	res, err := h.Cancellations.CancelTicket(c.Request.Context(), models.CancelRequest{
		TicketID: id,
		Actor:    actor,
		Reason:   req.Reason,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/tickets?q=&status=&trip_id=&date=&carrier_id=&page=&page_size=
func (h *Handlers) FindTickets(c *gin.Context) {
	filter := models.TicketFilter{FreeText: c.Query("q")}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := domain.ParseStatusFilter(raw)
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "status", Msg: "must be ACTIVE, CANCELLED, USED or ANY"})
			return
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := utils.ParseDate(raw)
		if err != nil {
			RespondDomainError(c, domain.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD", Err: err})
			return
		}
		filter.TripDate = &d
	}

	var ok bool
	if filter.TripID, ok = queryInt(c, "trip_id", 0); !ok {
		return
	}
	if filter.CarrierID, ok = queryInt(c, "carrier_id", 0); !ok {
		return
	}
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	size, ok := queryInt(c, "page_size", domain.DefaultPageSize)
	if !ok {
		return
	}
	filter.Page = domain.Pagination{Page: int(page), PageSize: int(size)}.Normalize()

	rows, err := h.Tickets.FindTickets(c.Request.Context(), filter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     rows,
		"page":      filter.Page.Page,
		"page_size": filter.Page.PageSize,
	})
}

// GET /api/tickets/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.Tickets.FindTicketByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
