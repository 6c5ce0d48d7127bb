package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
)

type AgentRepository struct {
	DB *sql.DB
}

func (r AgentRepository) GetByUsername(ctx context.Context, username string) (models.Agent, error) {
	var a models.Agent
	err := intdb.Conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT id, username, full_name, password_hash, role, active
		FROM agents
		WHERE username = ?
		LIMIT 1`, strings.TrimSpace(username),
	).Scan(&a.ID, &a.Username, &a.FullName, &a.PasswordHash, &a.Role, &a.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Agent{}, domain.NotFoundError{Resource: "agent", Err: err}
	}
	if err != nil {
		return models.Agent{}, fmt.Errorf("get agent %q: %w", username, err)
	}
	return a, nil
}

// Upsert creates the agent or refreshes its name, hash, role and active flag.
func (r AgentRepository) Upsert(ctx context.Context, a models.Agent) error {
	_, err := intdb.Conn(ctx, r.DB).ExecContext(ctx, `
		INSERT INTO agents (username, full_name, password_hash, role, active)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			full_name = VALUES(full_name),
			password_hash = VALUES(password_hash),
			role = VALUES(role),
			active = VALUES(active)`,
		strings.TrimSpace(a.Username), a.FullName, a.PasswordHash, a.Role, a.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert agent %q: %w", a.Username, err)
	}
	return nil
}
