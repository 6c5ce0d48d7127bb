package repositories

import (
	"context"
	"database/sql"

	intdb "ticketoffice/internal/db"
)

// TxManager opens the transaction that repositories join through the context.
type TxManager struct {
	DB *sql.DB
}

func (m TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return intdb.WithTx(ctx, m.DB, fn)
}
