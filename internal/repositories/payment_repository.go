package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) Insert(ctx context.Context, p models.Payment) (int64, error) {
	res, err := intdb.Conn(ctx, r.DB).ExecContext(ctx, `
		INSERT INTO payments (ticket_id, amount, method, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.TicketID, p.Amount, string(p.Method), string(p.Status), p.CreatedAt, p.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert payment for ticket %d: %w", p.TicketID, err)
	}
	return res.LastInsertId()
}

// MarkRefunded moves the ticket's SUCCESSFUL payment to REFUNDED.
func (r PaymentRepository) MarkRefunded(ctx context.Context, ticketID int64, at time.Time) error {
	res, err := intdb.Conn(ctx, r.DB).ExecContext(ctx, `
		UPDATE payments
		SET status = 'REFUNDED', updated_at = ?
		WHERE ticket_id = ? AND status = 'SUCCESSFUL'`,
		at, ticketID,
	)
	if err != nil {
		return fmt.Errorf("refund payment for ticket %d: %w", ticketID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("refund payment for ticket %d rows: %w", ticketID, err)
	}
	if n != 1 {
		return fmt.Errorf("refund payment for ticket %d: no successful payment", ticketID)
	}
	return nil
}
