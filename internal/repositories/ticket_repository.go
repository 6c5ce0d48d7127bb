package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/utils"
)

const activeSeatKey = "uq_tickets_trip_active_seat"

type TicketRepository struct {
	DB *sql.DB
}

// ActiveSeatHolder returns the id of the ACTIVE ticket on (trip, seat), if any.
func (r TicketRepository) ActiveSeatHolder(ctx context.Context, tripID int64, seat int) (int64, bool, error) {
	var id int64
	err := intdb.Conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT id FROM tickets WHERE trip_id = ? AND active_seat = ? LIMIT 1`,
		tripID, seat,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("check seat %d on trip %d: %w", seat, tripID, err)
	}
	return id, true, nil
}

// Insert stores an ACTIVE ticket. A violation of the active seat key is
// reported as SeatTaken.
func (r TicketRepository) Insert(ctx context.Context, t models.Ticket) (int64, error) {
	res, err := intdb.Conn(ctx, r.DB).ExecContext(ctx, `
		INSERT INTO tickets (trip_id, customer_id, seat_number, status, price, salesperson, notes, sold_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TripID, t.CustomerID, t.SeatNumber, string(t.Status), t.Price,
		t.Salesperson, intdb.NullIfEmpty(t.Notes), t.SoldAt, t.SoldAt,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) && intdb.DuplicateKeyName(err) == activeSeatKey {
			return 0, domain.SeatTakenError(t.TripID, t.SeatNumber, err)
		}
		return 0, fmt.Errorf("insert ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert ticket id: %w", err)
	}
	return id, nil
}

func (r TicketRepository) GetForUpdate(ctx context.Context, id int64) (models.Ticket, error) {
	var (
		t      models.Ticket
		status string
		notes  sql.NullString
	)
	err := intdb.Conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT id, trip_id, customer_id, seat_number, status, price, salesperson, notes, sold_at, updated_at
		FROM tickets
		WHERE id = ?
		FOR UPDATE`, id,
	).Scan(&t.ID, &t.TripID, &t.CustomerID, &t.SeatNumber, &status, &t.Price, &t.Salesperson, &notes, &t.SoldAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Err: err}
	}
	if err != nil {
		return models.Ticket{}, fmt.Errorf("get ticket %d: %w", id, err)
	}
	t.Status = domain.TicketStatus(status)
	t.Notes = notes.String
	return t, nil
}

// MarkCancelled moves an ACTIVE ticket to CANCELLED and appends note. It
// reports false when the ticket was no longer ACTIVE.
func (r TicketRepository) MarkCancelled(ctx context.Context, id int64, note string, at time.Time) (bool, error) {
	res, err := intdb.Conn(ctx, r.DB).ExecContext(ctx, `
		UPDATE tickets
		SET status = 'CANCELLED',
		    notes = CONCAT_WS('\n', NULLIF(notes, ''), ?),
		    updated_at = ?
		WHERE id = ? AND status = 'ACTIVE'`,
		note, at, id,
	)
	if err != nil {
		return false, fmt.Errorf("cancel ticket %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel ticket %d rows: %w", id, err)
	}
	return n == 1, nil
}

// ListActiveSeats returns the seats held by ACTIVE tickets on the trip.
func (r TicketRepository) ListActiveSeats(ctx context.Context, tripID int64) ([]models.OccupiedSeat, error) {
	rows, err := intdb.Conn(ctx, r.DB).QueryContext(ctx, `
		SELECT t.seat_number, t.id, c.full_name
		FROM tickets t
		JOIN customers c ON c.id = t.customer_id
		WHERE t.trip_id = ? AND t.status = 'ACTIVE'
		ORDER BY t.seat_number ASC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list active seats for trip %d: %w", tripID, err)
	}
	defer rows.Close()

	out := []models.OccupiedSeat{}
	for rows.Next() {
		var s models.OccupiedSeat
		if err := rows.Scan(&s.SeatNumber, &s.TicketID, &s.PassengerName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkUsedDeparted moves ACTIVE tickets of trips that departed at or before
// now to USED.
func (r TicketRepository) MarkUsedDeparted(ctx context.Context, now time.Time) (int64, error) {
	res, err := intdb.Conn(ctx, r.DB).ExecContext(ctx, `
		UPDATE tickets t
		JOIN trips tr ON tr.id = t.trip_id
		SET t.status = 'USED', t.updated_at = ?
		WHERE t.status = 'ACTIVE' AND tr.departure_at <= ?`,
		now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("mark departed tickets used: %w", err)
	}
	return res.RowsAffected()
}

const ticketSummarySelect = `
	SELECT t.id, t.trip_id, t.seat_number, t.status, t.price,
	       c.full_name, c.national_id, COALESCE(c.phone, ''),
	       v.plate, ca.name, os.name, ds.name, tr.departure_at,
	       t.salesperson, t.sold_at
	FROM tickets t
	JOIN customers c ON c.id = t.customer_id
	JOIN trips tr ON tr.id = t.trip_id
	JOIN vehicles v ON v.id = tr.vehicle_id
	JOIN carriers ca ON ca.id = tr.carrier_id
	JOIN stations os ON os.id = tr.origin_station_id
	JOIN stations ds ON ds.id = tr.destination_station_id`

// Search lists tickets matching f, newest sale first and ticket id
// descending on ties.
func (r TicketRepository) Search(ctx context.Context, f models.TicketFilter) ([]models.TicketSummary, error) {
	where, args := buildTicketFilter(f)
	page := f.Page.Normalize()

	query := ticketSummarySelect
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY t.sold_at DESC, t.id DESC\n\tLIMIT ? OFFSET ?"
	args = append(args, page.PageSize, page.Offset())

	rows, err := intdb.Conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search tickets: %w", err)
	}
	defer rows.Close()

	out := []models.TicketSummary{}
	for rows.Next() {
		var (
			s      models.TicketSummary
			status string
		)
		if err := rows.Scan(
			&s.TicketID, &s.TripID, &s.SeatNumber, &status, &s.Price,
			&s.PassengerName, &s.NationalID, &s.Phone,
			&s.VehiclePlate, &s.CarrierName, &s.OriginStation, &s.DestinationStation, &s.DepartureAt,
			&s.Salesperson, &s.SoldAt,
		); err != nil {
			return nil, err
		}
		s.Status = domain.TicketStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

func buildTicketFilter(f models.TicketFilter) ([]string, []any) {
	where := []string{}
	args := []any{}

	if text := utils.NormalizeSpace(f.FreeText); text != "" {
		cols := []string{"c.full_name", "c.national_id", "c.phone", "v.plate", "ca.name", "os.name", "ds.name"}
		likes := make([]string, 0, len(cols))
		pattern := "%" + utils.EscapeLike(text) + "%"
		for _, col := range cols {
			likes = append(likes, col+" LIKE ?")
			args = append(args, pattern)
		}
		where = append(where, "("+strings.Join(likes, " OR ")+")")
	}
	if f.Status != "" && f.Status != domain.StatusAny {
		where = append(where, "t.status = ?")
		args = append(args, string(f.Status))
	}
	if f.TripID > 0 {
		where = append(where, "t.trip_id = ?")
		args = append(args, f.TripID)
	}
	if f.TripDate != nil {
		start, end := utils.DayBounds(*f.TripDate)
		where = append(where, "tr.departure_at >= ? AND tr.departure_at < ?")
		args = append(args, start, end)
	}
	if f.CarrierID > 0 {
		where = append(where, "tr.carrier_id = ?")
		args = append(args, f.CarrierID)
	}
	return where, args
}

// GetDetail loads a ticket with its customer, trip and payment.
func (r TicketRepository) GetDetail(ctx context.Context, id int64) (models.TicketDetail, error) {
	var (
		d       models.TicketDetail
		status  string
		notes   sql.NullString
		phone   sql.NullString
		email   sql.NullString
		method  string
		pstatus string
	)
	err := intdb.Conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT t.id, t.trip_id, t.customer_id, t.seat_number, t.status, t.price, t.salesperson, t.notes, t.sold_at, t.updated_at,
		       c.id, c.full_name, c.national_id, c.phone, c.email, c.created_at,
		       p.id, p.amount, p.method, p.status, p.created_at, p.updated_at
		FROM tickets t
		JOIN customers c ON c.id = t.customer_id
		JOIN payments p ON p.ticket_id = t.id
		WHERE t.id = ?`, id,
	).Scan(
		&d.Ticket.ID, &d.Ticket.TripID, &d.Ticket.CustomerID, &d.Ticket.SeatNumber, &status, &d.Ticket.Price,
		&d.Ticket.Salesperson, &notes, &d.Ticket.SoldAt, &d.Ticket.UpdatedAt,
		&d.Customer.ID, &d.Customer.FullName, &d.Customer.NationalID, &phone, &email, &d.Customer.CreatedAt,
		&d.Payment.ID, &d.Payment.Amount, &method, &pstatus, &d.Payment.CreatedAt, &d.Payment.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TicketDetail{}, domain.NotFoundError{Resource: "ticket", Err: err}
	}
	if err != nil {
		return models.TicketDetail{}, fmt.Errorf("get ticket detail %d: %w", id, err)
	}
	d.Ticket.Status = domain.TicketStatus(status)
	d.Ticket.Notes = notes.String
	d.Customer.Phone = phone.String
	d.Customer.Email = email.String
	d.Payment.TicketID = d.Ticket.ID
	d.Payment.Method = domain.PaymentMethod(method)
	d.Payment.Status = domain.PaymentStatus(pstatus)

	trip, err := TripRepository{DB: r.DB}.Get(ctx, d.Ticket.TripID)
	if err != nil {
		return models.TicketDetail{}, err
	}
	d.Trip = trip
	return d, nil
}
