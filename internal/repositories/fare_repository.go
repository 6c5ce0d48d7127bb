package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intdb "ticketoffice/internal/db"
	"ticketoffice/internal/domain/models"
)

type FareRuleRepository struct {
	DB *sql.DB
}

func (r FareRuleRepository) ListRules(ctx context.Context) ([]models.FareRule, error) {
	rows, err := intdb.Conn(ctx, r.DB).QueryContext(ctx, `
		SELECT id, origin_city, destination_city, COALESCE(carrier_id, 0), amount
		FROM fare_rules
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list fare rules: %w", err)
	}
	defer rows.Close()

	out := []models.FareRule{}
	for rows.Next() {
		var fr models.FareRule
		if err := rows.Scan(&fr.ID, &fr.OriginCity, &fr.DestinationCity, &fr.CarrierID, &fr.Amount); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func (r FareRuleRepository) ListSurcharges(ctx context.Context) ([]models.SeatSurcharge, error) {
	rows, err := intdb.Conn(ctx, r.DB).QueryContext(ctx, `
		SELECT id, COALESCE(carrier_id, 0), seat_from, seat_to, amount
		FROM seat_surcharges
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list seat surcharges: %w", err)
	}
	defer rows.Close()

	out := []models.SeatSurcharge{}
	for rows.Next() {
		var s models.SeatSurcharge
		if err := rows.Scan(&s.ID, &s.CarrierID, &s.SeatFrom, &s.SeatTo, &s.Amount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
