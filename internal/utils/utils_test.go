package utils

import (
	"testing"
	"time"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
)

func testFareTable() FareTable {
	return NewFareTable(
		[]models.FareRule{
			{ID: 1, OriginCity: "Ankara", DestinationCity: "Istanbul", Amount: 45000},
			{ID: 2, OriginCity: "Istanbul", DestinationCity: "Ankara", CarrierID: 7, Amount: 52000},
			{ID: 3, OriginCity: "Izmir", DestinationCity: "Ankara", Amount: 38000},
			{ID: 4, OriginCity: "Ankara", DestinationCity: "Izmir", Amount: 39000},
		},
		[]models.SeatSurcharge{
			{ID: 1, SeatFrom: 1, SeatTo: 4, Amount: 2500},
			{ID: 2, CarrierID: 7, SeatFrom: 1, SeatTo: 2, Amount: 5000},
		},
	)
}

func TestFareTableCompute(t *testing.T) {
	table := testFareTable()

	cases := []struct {
		name    string
		from    string
		to      string
		carrier int64
		seat    int
		want    domain.Money
	}{
		{"generic rule", "Ankara", "Istanbul", 3, 20, 45000},
		{"reverse direction matches", "istanbul", "ANKARA", 3, 20, 45000},
		{"carrier rule beats generic", "Ankara", "Istanbul", 7, 20, 52000},
		{"stated direction beats reverse", "Ankara", "Izmir", 0, 20, 39000},
		{"generic surcharge", "Ankara", "Istanbul", 3, 3, 47500},
		{"carrier surcharge beats generic", "Ankara", "Istanbul", 7, 1, 57000},
		{"generic surcharge for carrier outside its band", "Ankara", "Istanbul", 7, 4, 54500},
		{"whitespace ignored", "  Izmir ", "Ankara", 0, 10, 38000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := table.Compute(tc.from, tc.to, tc.carrier, tc.seat)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestFareTableDeterministic(t *testing.T) {
	table := testFareTable()
	first, err := table.Compute("Ankara", "Istanbul", 7, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i := 0; i < 20; i++ {
		got, _ := table.Compute("Ankara", "Istanbul", 7, 2)
		if got != first {
			t.Fatalf("iteration %d: %s != %s", i, got, first)
		}
	}
}

func TestFareTableRouteNotFound(t *testing.T) {
	_, err := testFareTable().Compute("Ankara", "Trabzon", 0, 1)
	if !domain.IsKind(err, domain.KindRouteNotFound) {
		t.Fatalf("expected route_not_found, got %v", err)
	}
}

func TestFareTableRejectsBadInput(t *testing.T) {
	table := testFareTable()
	if _, err := table.Compute("", "Ankara", 0, 1); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty origin, got %v", err)
	}
	if _, err := table.Compute("Ankara", "Istanbul", 0, 0); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for seat 0, got %v", err)
	}
}

func TestFareTableCarrierRuleOnlyForThatCarrier(t *testing.T) {
	table := NewFareTable([]models.FareRule{
		{ID: 1, OriginCity: "Bursa", DestinationCity: "Ankara", CarrierID: 9, Amount: 30000},
	}, nil)
	if _, err := table.Compute("Bursa", "Ankara", 4, 1); !domain.IsKind(err, domain.KindRouteNotFound) {
		t.Fatalf("expected route_not_found for other carrier, got %v", err)
	}
}

func TestSameName(t *testing.T) {
	if !SameName("Ayse  Yilmaz", "ayse yilmaz") {
		t.Fatalf("expected names to match")
	}
	if SameName("Ayse Yilmaz", "Ayse Kaya") {
		t.Fatalf("expected names to differ")
	}
}

func TestEscapeLike(t *testing.T) {
	if got := EscapeLike(`50%_a\b`); got != `50\%\_a\\b` {
		t.Fatalf("unexpected escape %q", got)
	}
}

func TestDayBounds(t *testing.T) {
	day, err := ParseDate("2026-03-14")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	start, end := DayBounds(day.Add(13 * time.Hour))
	if !start.Equal(day) || !end.Equal(day.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected bounds %v %v", start, end)
	}
	if FormatDate(start) != "2026-03-14" {
		t.Fatalf("unexpected date %s", FormatDate(start))
	}
}
