package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/utils"
)

type CustomerRepository struct {
	DB *sql.DB
}

// FindOrCreate returns the customer with in.NationalID, inserting it first
// when absent. Existing rows are never modified, so concurrent calls for the
// same national id resolve to one row.
func (r CustomerRepository) FindOrCreate(ctx context.Context, in models.CustomerInput, now time.Time) (models.Customer, error) {
	q := intdb.Conn(ctx, r.DB)
	res, err := q.ExecContext(ctx, `
		INSERT INTO customers (full_name, national_id, phone, email, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`,
		utils.NormalizeSpace(in.FullName), utils.TrimOrEmpty(in.NationalID),
		intdb.NullIfEmpty(in.Phone), intdb.NullIfEmpty(in.Email), now,
	)
	if err != nil {
		return models.Customer{}, fmt.Errorf("upsert customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Customer{}, fmt.Errorf("upsert customer id: %w", err)
	}

	var (
		c     models.Customer
		phone sql.NullString
		email sql.NullString
	)
	if err := q.QueryRowContext(ctx, `
		SELECT id, full_name, national_id, phone, email, created_at
		FROM customers
		WHERE id = ?`, id,
	).Scan(&c.ID, &c.FullName, &c.NationalID, &phone, &email, &c.CreatedAt); err != nil {
		return models.Customer{}, fmt.Errorf("load customer %d: %w", id, err)
	}
	c.Phone = phone.String
	c.Email = email.String
	return c, nil
}
