package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"ticketoffice/internal/clock"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/logger"
	"ticketoffice/internal/utils"
)

// DocsService renders printable PDFs of persisted tickets.
type DocsService struct {
	Tickets TicketReader
	Clock   clock.Clock
}

func (s DocsService) GenerateETicket(ctx context.Context, ticketID int64) ([]byte, string, error) {
	d, err := TicketQueryService{Tickets: s.Tickets}.FindTicketByID(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	logger.Event(ctx, "docs", "generate_eticket", "e-ticket rendered", "ticket_id", ticketID)
	return buildETicketPDF(d)
}

// GenerateReceipt renders the payment receipt, including refund state.
func (s DocsService) GenerateReceipt(ctx context.Context, ticketID int64) ([]byte, string, error) {
	d, err := TicketQueryService{Tickets: s.Tickets}.FindTicketByID(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	logger.Event(ctx, "docs", "generate_receipt", "receipt rendered", "ticket_id", ticketID)
	return buildReceiptPDF(d, s.Clock)
}

func buildETicketPDF(d models.TicketDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger   : %s", safe(d.Customer.FullName, "-")),
		fmt.Sprintf("National ID : %s", safe(d.Customer.NationalID, "-")),
		fmt.Sprintf("Seat        : %d", d.Ticket.SeatNumber),
		fmt.Sprintf("Carrier     : %s", safe(d.Trip.CarrierName, "-")),
		fmt.Sprintf("Route       : %s (%s) -> %s (%s)",
			safe(d.Trip.OriginStation, "-"), safe(d.Trip.OriginCity, "-"),
			safe(d.Trip.DestinationStation, "-"), safe(d.Trip.DestinationCity, "-")),
		fmt.Sprintf("Departure   : %s", utils.FormatDateTime(d.Trip.DepartureAt)),
		fmt.Sprintf("Arrival     : %s", utils.FormatDateTime(d.Trip.ArrivalAt)),
		fmt.Sprintf("Vehicle     : %s", safe(d.Trip.VehiclePlate, "-")),
		fmt.Sprintf("Price       : %s", d.Ticket.Price.String()),
		fmt.Sprintf("Status      : %s", d.Ticket.Status),
		fmt.Sprintf("Ticket No   : TCK-%d-%d", d.Ticket.TripID, d.Ticket.ID),
		fmt.Sprintf("Sold by     : %s at %s", safe(d.Ticket.Salesperson, "-"), utils.FormatDateTime(d.Ticket.SoldAt)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Valid for one passenger and one seat. Present at boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", d.Ticket.ID, safeFilenamePart(fmt.Sprintf("%s_%d", d.Customer.FullName, d.Ticket.SeatNumber)))
	return buf.Bytes(), filename, nil
}

func buildReceiptPDF(d models.TicketDetail, clk clock.Clock) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RECEIPT")
	pdf.Ln(12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	receiptNo := fmt.Sprintf("RCP-%d-%d", d.Ticket.ID, d.Payment.ID)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Receipt No : "+receiptNo)
	pdf.Ln(7)
	if clk != nil {
		pdf.Cell(0, 7, "Printed    : "+utils.FormatDateTime(clk.Now()))
		pdf.Ln(10)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Name  : %s", safe(d.Customer.FullName, "-"))))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Phone : %s", safe(d.Customer.Phone, "-")))
	pdf.Ln(10)

	desc := fmt.Sprintf("Bus ticket %s -> %s (%s) seat %d",
		safe(d.Trip.OriginCity, "-"), safe(d.Trip.DestinationCity, "-"),
		utils.FormatDateTime(d.Trip.DepartureAt), d.Ticket.SeatNumber)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr("1) "+desc), "", "", false)
	pdf.Ln(2)
	pdf.Cell(0, 6, fmt.Sprintf("Method : %s", d.Payment.Method))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status : %s", d.Payment.Status))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+d.Payment.Amount.String())
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("RECEIPT_%d_%s.pdf", d.Ticket.ID, safeFilenamePart(d.Customer.FullName))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
