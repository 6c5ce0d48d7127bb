package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ticketoffice/internal/clock"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/messaging"
)

var baseNow = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

type engine struct {
	store     *fakeStore
	clock     *clock.Manual
	booking   BookingService
	cancel    CancellationService
	seatMaps  SeatMapService
	occupancy OccupancyService
	query     TicketQueryService
	events    *recordingPublisher
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	p.subjects = append(p.subjects, subject)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

func newEngine(trips ...models.Trip) *engine {
	store := newFakeStore(trips...)
	clk := clock.NewManual(baseNow)
	events := &recordingPublisher{}
	seatMaps := SeatMapService{Trips: fakeTrips{store}, Seats: fakeTickets{store}}
	return &engine{
		store: store,
		clock: clk,
		booking: BookingService{
			Tx: store, Trips: fakeTrips{store}, Tickets: fakeTickets{store},
			Payments: fakePayments{store}, Customers: fakeCustomers{store},
			Clock: clk, Events: events,
		},
		cancel: CancellationService{
			Tx: store, Trips: fakeTrips{store}, Tickets: fakeTickets{store},
			Payments: fakePayments{store}, Clock: clk, MinLead: 2 * time.Hour, Events: events,
		},
		seatMaps:  seatMaps,
		occupancy: OccupancyService{SeatMaps: seatMaps},
		query:     TicketQueryService{Tickets: fakeTickets{store}},
		events:    events,
	}
}

func testTrip(id int64, departsIn time.Duration) models.Trip {
	return models.Trip{
		ID: id, CarrierID: 2, CarrierName: "Anadolu Lines",
		VehicleID: 5, VehiclePlate: "06 ABC 123", SeatCapacity: 40,
		OriginStationID: 10, OriginStation: "Ankara Terminal", OriginCity: "Ankara",
		DestinationStationID: 11, DestinationStation: "Esenler", DestinationCity: "Istanbul",
		DepartureAt: baseNow.Add(departsIn), ArrivalAt: baseNow.Add(departsIn + 6*time.Hour),
		Fare: 15000, Active: true,
	}
}

func saleReq(tripID int64, seat int, nationalID string) models.SaleRequest {
	return models.SaleRequest{
		TripID:     tripID,
		SeatNumber: seat,
		Customer: models.CustomerInput{
			FullName:   "Ayse Yilmaz",
			NationalID: nationalID,
			Phone:      "05551112233",
		},
		Price:         15000,
		Salesperson:   "agent1",
		PaymentMethod: domain.PaymentCash,
	}
}

func (e *engine) sell(t *testing.T, req models.SaleRequest) models.SaleResult {
	t.Helper()
	e.clock.Advance(time.Second)
	res, err := e.booking.SellTicket(context.Background(), req)
	if err != nil {
		t.Fatalf("sell trip %d seat %d: unexpected error %v", req.TripID, req.SeatNumber, err)
	}
	return res
}

func TestSellThenSellSameSeatIsSeatTaken(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))

	res := e.sell(t, saleReq(1, 12, "11111111110"))
	if res.Detail.Ticket.Status != domain.TicketActive {
		t.Fatalf("expected ACTIVE ticket, got %s", res.Detail.Ticket.Status)
	}
	if res.Detail.Payment.Status != domain.PaymentSuccessful || res.Detail.Payment.Amount != 15000 {
		t.Fatalf("unexpected payment %+v", res.Detail.Payment)
	}

	_, err := e.booking.SellTicket(context.Background(), saleReq(1, 12, "22222222220"))
	if !domain.IsKind(err, domain.KindSeatTaken) {
		t.Fatalf("expected seat_taken, got %v", err)
	}
	if e.events.count(messaging.SubjectTicketSold) != 1 {
		t.Fatalf("expected one sold event")
	}
}

func TestCancelFreesSeatForResale(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	first := e.sell(t, saleReq(1, 12, "11111111110"))

	out, err := e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: first.TicketID, Actor: "agent1", Reason: "customer request"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.Status != domain.TicketCancelled || out.RefundedAmount != 15000 {
		t.Fatalf("unexpected cancel result %+v", out)
	}

	d, err := e.query.FindTicketByID(context.Background(), first.TicketID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if d.Ticket.Status != domain.TicketCancelled || d.Payment.Status != domain.PaymentRefunded {
		t.Fatalf("expected CANCELLED/REFUNDED, got %s/%s", d.Ticket.Status, d.Payment.Status)
	}
	if d.Ticket.Notes != "[2026-06-01 08:00 UTC] cancelled by agent1: customer request" {
		t.Fatalf("unexpected note %q", d.Ticket.Notes)
	}

	second := e.sell(t, saleReq(1, 12, "11111111110"))
	if second.TicketID == first.TicketID {
		t.Fatalf("expected a new ticket id")
	}
	if n := e.store.countTickets(1, 12, domain.TicketActive); n != 1 {
		t.Fatalf("expected one ACTIVE ticket on seat 12, got %d", n)
	}
}

func TestCancelInsideWindowReportsRemainingTime(t *testing.T) {
	e := newEngine(testTrip(2, 90*time.Minute))
	res := e.sell(t, saleReq(2, 5, "11111111110"))

	_, err := e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: res.TicketID})
	var win domain.CancellationWindowError
	if !errors.As(err, &win) {
		t.Fatalf("expected cancellation window error, got %v", err)
	}
	if win.Remaining < 89*time.Minute || win.Remaining > 90*time.Minute {
		t.Fatalf("expected about 90m remaining, got %s", win.Remaining)
	}
	if d, _ := e.query.FindTicketByID(context.Background(), res.TicketID); d.Ticket.Status != domain.TicketActive || d.Payment.Status != domain.PaymentSuccessful {
		t.Fatalf("failed cancel changed state: %s/%s", d.Ticket.Status, d.Payment.Status)
	}
}

func TestCancelWindowBoundary(t *testing.T) {
	cases := []struct {
		name      string
		departsIn time.Duration
		wantErr   bool
	}{
		{"exactly at threshold", 2 * time.Hour, false},
		{"one second short", 2*time.Hour - time.Second, true},
		{"well before", 26 * time.Hour, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(testTrip(1, 10*time.Hour))
			res := e.sell(t, saleReq(1, 1, "11111111110"))

			trip := e.store.trips[1]
			trip.DepartureAt = e.clock.Now().Add(tc.departsIn)
			e.store.trips[1] = trip

			_, err := e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: res.TicketID})
			if tc.wantErr && !domain.IsKind(err, domain.KindCancellationWindowClosed) {
				t.Fatalf("expected window closed, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
		})
	}
}

func TestCancelFinalTicketsIsAlreadyFinal(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	res := e.sell(t, saleReq(1, 3, "11111111110"))

	if _, err := e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: res.TicketID}); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	_, err := e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: res.TicketID})
	if !domain.IsKind(err, domain.KindAlreadyFinal) {
		t.Fatalf("expected already_final, got %v", err)
	}

	_, err = e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: 999})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSellRejectsOutOfRangeSeat(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))

	_, err := e.booking.SellTicket(context.Background(), saleReq(1, 50, "11111111110"))
	if !domain.IsKind(err, domain.KindInvalidSeat) {
		t.Fatalf("expected invalid_seat for 50, got %v", err)
	}
	_, err = e.booking.SellTicket(context.Background(), saleReq(1, -1, "11111111110"))
	if !domain.IsKind(err, domain.KindInvalidSeat) {
		t.Fatalf("expected invalid_seat for -1, got %v", err)
	}
	_, err = e.booking.SellTicket(context.Background(), saleReq(1, 0, "11111111110"))
	if !domain.IsValidation(err) {
		t.Fatalf("expected invalid_input for missing seat, got %v", err)
	}
}

func TestSellPreconditionOrder(t *testing.T) {
	inactive := testTrip(3, 5*time.Hour)
	inactive.Active = false
	e := newEngine(testTrip(1, 5*time.Hour), testTrip(2, -time.Minute), inactive)

	cases := []struct {
		name string
		mut  func(r *models.SaleRequest)
		want domain.Kind
	}{
		{"missing national id", func(r *models.SaleRequest) { r.Customer.NationalID = " " }, domain.KindInvalidInput},
		{"missing salesperson", func(r *models.SaleRequest) { r.Salesperson = "" }, domain.KindInvalidInput},
		{"unknown payment method", func(r *models.SaleRequest) { r.PaymentMethod = "CHEQUE" }, domain.KindInvalidInput},
		{"negative price", func(r *models.SaleRequest) { r.Price = -100 }, domain.KindInvalidInput},
		{"price above column range", func(r *models.SaleRequest) { r.Price = domain.MaxAmount + 1 }, domain.KindInvalidInput},
		{"missing input beats missing trip", func(r *models.SaleRequest) { r.TripID = 404; r.Price = 0 }, domain.KindInvalidInput},
		{"unknown trip", func(r *models.SaleRequest) { r.TripID = 404 }, domain.KindNotFound},
		{"inactive trip", func(r *models.SaleRequest) { r.TripID = 3 }, domain.KindTripInactive},
		{"departed trip", func(r *models.SaleRequest) { r.TripID = 2 }, domain.KindTripDeparted},
		{"departed beats bad seat", func(r *models.SaleRequest) { r.TripID = 2; r.SeatNumber = 99 }, domain.KindTripDeparted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := saleReq(1, 7, "11111111110")
			tc.mut(&req)
			_, err := e.booking.SellTicket(context.Background(), req)
			if got := domain.KindOf(err); got != tc.want {
				t.Fatalf("expected %s, got %s (%v)", tc.want, got, err)
			}
		})
	}
	if tickets, payments, customers := e.store.rowCounts(); tickets+payments+customers != 0 {
		t.Fatalf("rejected sales left rows behind: %d/%d/%d", tickets, payments, customers)
	}
}

func TestSellAcceptsMaxAmount(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	req := saleReq(1, 1, "11111111110")
	req.Price = domain.MaxAmount
	if _, err := e.booking.SellTicket(context.Background(), req); err != nil {
		t.Fatalf("sell at max amount: %v", err)
	}
}

func TestSellAtDepartureInstantIsDeparted(t *testing.T) {
	e := newEngine(testTrip(1, time.Second))
	e.clock.Advance(time.Second)
	_, err := e.booking.SellTicket(context.Background(), saleReq(1, 1, "11111111110"))
	if !domain.IsKind(err, domain.KindTripDeparted) {
		t.Fatalf("expected trip_departed, got %v", err)
	}
}

func TestConcurrentSalesForOneSeat(t *testing.T) {
	for _, skip := range []bool{false, true} {
		t.Run(fmt.Sprintf("skipSeatCheck=%v", skip), func(t *testing.T) {
			e := newEngine(testTrip(1, 5*time.Hour))
			e.store.skipSeatCheck = skip

			const workers = 16
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				wins    int
				taken   int
				unknown []error
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := e.booking.SellTicket(context.Background(), saleReq(1, 20, fmt.Sprintf("3000000%04d", i)))
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						wins++
					case domain.IsKind(err, domain.KindSeatTaken):
						taken++
					default:
						unknown = append(unknown, err)
					}
				}(i)
			}
			wg.Wait()

			if len(unknown) > 0 {
				t.Fatalf("unexpected errors: %v", unknown)
			}
			if wins != 1 || taken != workers-1 {
				t.Fatalf("expected 1 win and %d seat_taken, got %d and %d", workers-1, wins, taken)
			}
			if n := e.store.countTickets(1, 20, domain.TicketActive); n != 1 {
				t.Fatalf("expected exactly one ACTIVE ticket, got %d", n)
			}
			if tickets, payments, _ := e.store.rowCounts(); tickets != 1 || payments != 1 {
				t.Fatalf("losers left rows behind: tickets=%d payments=%d", tickets, payments)
			}
		})
	}
}

func TestConcurrentCancelsOfOneTicket(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	res := e.sell(t, saleReq(1, 8, "11111111110"))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		kinds []domain.Kind
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: res.TicketID})
			mu.Lock()
			kinds = append(kinds, domain.KindOf(err))
			mu.Unlock()
		}()
	}
	wg.Wait()

	ok, final := 0, 0
	for _, k := range kinds {
		switch k {
		case "":
			ok++
		case domain.KindAlreadyFinal:
			final++
		}
	}
	if ok != 1 || final != 1 {
		t.Fatalf("expected one success and one already_final, got %v", kinds)
	}
}

func TestRawDuplicateAtCommitIsSeatTaken(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	e.sell(t, saleReq(1, 4, "11111111110"))

	e.store.skipSeatCheck = true
	e.store.rawDuplicate = true
	_, err := e.booking.SellTicket(context.Background(), saleReq(1, 4, "22222222220"))
	if !domain.IsKind(err, domain.KindSeatTaken) {
		t.Fatalf("expected seat_taken, got %v", err)
	}
	if _, _, customers := e.store.rowCounts(); customers != 1 {
		t.Fatalf("expected customer insert rolled back, got %d customers", customers)
	}
}

func TestSellNoPartialEffectsWhenPaymentFails(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	e.store.paymentErr = errors.New("disk full")

	_, err := e.booking.SellTicket(context.Background(), saleReq(1, 9, "11111111110"))
	if !domain.IsKind(err, domain.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if tickets, payments, customers := e.store.rowCounts(); tickets+payments+customers != 0 {
		t.Fatalf("failed sale left rows: %d/%d/%d", tickets, payments, customers)
	}
}

func TestSellTransientFailure(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	e.store.tripErr = driver.ErrBadConn

	_, err := e.booking.SellTicket(context.Background(), saleReq(1, 9, "11111111110"))
	if !domain.IsKind(err, domain.KindTransientFailure) {
		t.Fatalf("expected transient_failure, got %v", err)
	}
}

func TestCustomerResolvedOncePerNationalID(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	a := e.sell(t, saleReq(1, 1, "11111111110"))
	req := saleReq(1, 2, "11111111110")
	req.Customer.FullName = "  ayse   YILMAZ "
	req.Customer.Phone = "05550000000"
	b := e.sell(t, req)

	if a.Detail.Customer.ID != b.Detail.Customer.ID {
		t.Fatalf("expected same customer, got %d and %d", a.Detail.Customer.ID, b.Detail.Customer.ID)
	}
	if e.store.customerInserts != 1 {
		t.Fatalf("expected one customer insert, got %d", e.store.customerInserts)
	}
	if b.Detail.Customer.Phone != "05551112233" {
		t.Fatalf("customer phone must not be updated, got %s", b.Detail.Customer.Phone)
	}
}

func TestCustomerNameConflictIsInvalidCustomer(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	e.sell(t, saleReq(1, 1, "11111111110"))

	req := saleReq(1, 2, "11111111110")
	req.Customer.FullName = "Mehmet Kaya"
	_, err := e.booking.SellTicket(context.Background(), req)
	if !domain.IsKind(err, domain.KindInvalidCustomer) {
		t.Fatalf("expected invalid_customer, got %v", err)
	}
	if n := e.store.countTickets(1, 2, ""); n != 0 {
		t.Fatalf("expected no ticket on seat 2, got %d", n)
	}

	e.store.customerErr = errors.New("constraint failed")
	_, err = e.booking.SellTicket(context.Background(), saleReq(1, 3, "99999999990"))
	if !domain.IsKind(err, domain.KindInvalidCustomer) {
		t.Fatalf("expected invalid_customer on lookup failure, got %v", err)
	}
}

func TestSeatMapAndOccupancyAgree(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	for _, seat := range []int{1, 2, 3, 12, 40} {
		e.sell(t, saleReq(1, seat, fmt.Sprintf("1000000%04d", seat)))
	}
	res := e.sell(t, saleReq(1, 7, "22222222220"))
	if _, err := e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: res.TicketID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	sm, err := e.seatMaps.ResolveSeatMap(context.Background(), 1)
	if err != nil {
		t.Fatalf("seat map: %v", err)
	}
	if sm.OccupiedCount != 5 || sm.FreeCount != 35 || len(sm.Free)+len(sm.Occupied) != sm.SeatCapacity {
		t.Fatalf("unexpected seat map counts %+v", sm)
	}
	for _, seat := range sm.Free {
		if seat == 12 {
			t.Fatalf("seat 12 should be occupied")
		}
	}

	occ, err := e.occupancy.ComputeOccupancy(context.Background(), 1)
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	if occ.Occupied != sm.OccupiedCount {
		t.Fatalf("occupancy count %d != seat map count %d", occ.Occupied, sm.OccupiedCount)
	}
	if occ.Percentage != 12.5 {
		t.Fatalf("expected 12.5, got %v", occ.Percentage)
	}
}

func TestSeatMapUnknownTrip(t *testing.T) {
	e := newEngine()
	if _, err := e.seatMaps.ResolveSeatMap(context.Background(), 5); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := e.occupancy.ComputeOccupancy(context.Background(), 5); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOccupancyPercent(t *testing.T) {
	cases := []struct {
		occupied, capacity int
		want               float64
	}{
		{0, 40, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{40, 40, 100},
		{1, 0, 0},
		{13, 46, 28.3},
	}
	for _, tc := range cases {
		if got := OccupancyPercent(tc.occupied, tc.capacity); got != tc.want {
			t.Fatalf("OccupancyPercent(%d, %d) = %v, want %v", tc.occupied, tc.capacity, got, tc.want)
		}
	}
}

func TestFindTicketsByNationalIDAndStatus(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	first := e.sell(t, saleReq(1, 12, "11111111110"))
	if _, err := e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: first.TicketID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	second := e.sell(t, saleReq(1, 12, "11111111110"))
	e.sell(t, saleReq(1, 13, "55555555550"))

	active, err := e.query.FindTickets(context.Background(), models.TicketFilter{FreeText: "11111111110", Status: domain.StatusFilter(domain.TicketActive)})
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(active) != 1 || active[0].TicketID != second.TicketID {
		t.Fatalf("expected only the re-sold ticket, got %+v", active)
	}

	all, err := e.query.FindTickets(context.Background(), models.TicketFilter{FreeText: "11111111110", Status: domain.StatusAny})
	if err != nil {
		t.Fatalf("find any: %v", err)
	}
	if len(all) != 2 || all[0].TicketID != second.TicketID || all[1].TicketID != first.TicketID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	if _, err := e.query.FindTickets(context.Background(), models.TicketFilter{Status: "PENDING"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for bad status, got %v", err)
	}
	if _, err := e.query.FindTicketByID(context.Background(), 404); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSweeperMarksDepartedTicketsUsed(t *testing.T) {
	e := newEngine(testTrip(1, 3*time.Hour), testTrip(2, 30*time.Hour))
	a := e.sell(t, saleReq(1, 1, "11111111110"))
	e.sell(t, saleReq(2, 1, "22222222220"))

	sweeper := &UsageSweeper{Tickets: fakeTickets{e.store}, Clock: e.clock, Events: e.events}
	e.clock.Advance(3 * time.Hour)

	n, err := sweeper.RunOnce(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("expected 1 ticket used, got %d %v", n, err)
	}
	if e.events.count(messaging.SubjectTicketsUsed) != 1 {
		t.Fatalf("expected a tickets.used event")
	}

	_, err = e.cancel.CancelTicket(context.Background(), models.CancelRequest{TicketID: a.TicketID})
	if !domain.IsKind(err, domain.KindAlreadyFinal) {
		t.Fatalf("expected already_final for USED ticket, got %v", err)
	}
	sm, _ := e.seatMaps.ResolveSeatMap(context.Background(), 1)
	if sm.OccupiedCount != 0 {
		t.Fatalf("USED tickets must not occupy seats, got %d", sm.OccupiedCount)
	}
}

func TestSweeperStartStop(t *testing.T) {
	e := newEngine(testTrip(1, 5*time.Hour))
	sweeper := &UsageSweeper{Tickets: fakeTickets{e.store}, Clock: e.clock, Interval: time.Hour}
	sweeper.Start(context.Background())
	sweeper.Stop()
	sweeper.Stop()

	disabled := &UsageSweeper{Tickets: fakeTickets{e.store}, Clock: e.clock}
	disabled.Start(context.Background())
	disabled.Stop()
}
