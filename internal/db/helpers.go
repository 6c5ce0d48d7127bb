package db

import (
	"context"
	"database/sql"
	"strings"
)

// NullIfEmpty stores optional strings as NULL instead of "".
func NullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.TrimSpace(s)
}

func HasTable(ctx context.Context, q Executor, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// MissingTables lists the tables from RequiredTables that are not present.
func MissingTables(ctx context.Context, q Executor) []string {
	missing := []string{}
	for _, t := range RequiredTables {
		if !HasTable(ctx, q, t) {
			missing = append(missing, t)
		}
	}
	return missing
}
