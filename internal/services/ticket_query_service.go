package services

import (
	"context"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
)

type TicketQueryService struct {
	Tickets TicketReader
}

// FindTickets returns matching tickets, most recent sale first.
func (s TicketQueryService) FindTickets(ctx context.Context, f models.TicketFilter) ([]models.TicketSummary, error) {
	if f.Status == "" {
		f.Status = domain.StatusAny
	}
	if _, ok := domain.ParseStatusFilter(string(f.Status)); !ok {
		return nil, domain.ValidationError{Field: "status", Msg: "must be ACTIVE, CANCELLED, USED or ANY"}
	}
	f.Page = f.Page.Normalize()

	out, err := s.Tickets.Search(ctx, f)
	if err != nil {
		return nil, classify(err, "find tickets")
	}
	return out, nil
}

func (s TicketQueryService) FindTicketByID(ctx context.Context, id int64) (models.TicketDetail, error) {
	if id <= 0 {
		return models.TicketDetail{}, domain.ValidationError{Field: "ticket_id", Msg: "is required"}
	}
	d, err := s.Tickets.GetDetail(ctx, id)
	if err != nil {
		return models.TicketDetail{}, classify(err, "find ticket")
	}
	return d, nil
}
