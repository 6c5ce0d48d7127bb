package utils

import (
	"sort"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
)

// FareTable is an immutable snapshot of fare rules and seat surcharges.
// Compute is deterministic for a given table.
type FareTable struct {
	rules      []models.FareRule
	surcharges []models.SeatSurcharge
}

func NewFareTable(rules []models.FareRule, surcharges []models.SeatSurcharge) FareTable {
	r := append([]models.FareRule(nil), rules...)
	s := append([]models.SeatSurcharge(nil), surcharges...)
	sort.SliceStable(r, func(i, j int) bool { return r[i].ID < r[j].ID })
	sort.SliceStable(s, func(i, j int) bool { return s[i].ID < s[j].ID })
	return FareTable{rules: r, surcharges: s}
}

// Compute prices one seat. A route matches in either direction, case
// insensitive. A carrier-specific rule beats a generic one, and within the
// same specificity the stated direction beats the reverse one. The most
// specific surcharge band covering the seat is added on top.
func (t FareTable) Compute(originCity, destinationCity string, carrierID int64, seat int) (domain.Money, error) {
	from := FoldKey(originCity)
	to := FoldKey(destinationCity)
	if from == "" || to == "" {
		return 0, domain.ValidationError{Field: "route", Msg: "origin and destination cities are required"}
	}
	if seat < 1 {
		return 0, domain.ValidationError{Field: "seat_number", Msg: "must be at least 1"}
	}

	best := -1
	bestRank := 0
	for i, r := range t.rules {
		rank := routeRank(r, from, to, carrierID)
		if rank > bestRank {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		return 0, domain.RouteNotFoundError(originCity, destinationCity)
	}

	amount := t.rules[best].Amount
	if s, ok := t.surchargeFor(carrierID, seat); ok {
		amount += s.Amount
	}
	return amount, nil
}

func routeRank(r models.FareRule, from, to string, carrierID int64) int {
	rf, rt := FoldKey(r.OriginCity), FoldKey(r.DestinationCity)
	forward := rf == from && rt == to
	reverse := rf == to && rt == from
	if !forward && !reverse {
		return 0
	}

	rank := 1
	switch {
	case r.CarrierID == 0:
	case r.CarrierID == carrierID:
		rank += 2
	default:
		return 0
	}
	if forward {
		rank++
	}
	return rank
}

func (t FareTable) surchargeFor(carrierID int64, seat int) (models.SeatSurcharge, bool) {
	var generic *models.SeatSurcharge
	for i := range t.surcharges {
		s := t.surcharges[i]
		if seat < s.SeatFrom || seat > s.SeatTo {
			continue
		}
		if s.CarrierID != 0 && s.CarrierID == carrierID {
			return s, true
		}
		if s.CarrierID == 0 && generic == nil {
			generic = &t.surcharges[i]
		}
	}
	if generic != nil {
		return *generic, true
	}
	return models.SeatSurcharge{}, false
}
