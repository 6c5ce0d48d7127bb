package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/utils"
)

// fakeStore is an in-memory store. Transactions are serialized and rolled
// back from a snapshot on error. Insert enforces one ACTIVE ticket per
// (trip, seat) like the unique index does.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	trips     map[int64]models.Trip
	tickets   map[int64]models.Ticket
	payments  map[int64]models.Payment
	customers map[string]models.Customer

	nextTicket   int64
	nextPayment  int64
	nextCustomer int64

	// skipSeatCheck makes ActiveSeatHolder miss existing tickets so the
	// insert-time uniqueness path is exercised.
	skipSeatCheck bool
	// rawDuplicate makes a conflicting insert return the driver error instead
	// of the translated one.
	rawDuplicate    bool
	tripErr         error
	paymentErr      error
	customerErr     error
	insertHook      func()
	customerInserts int
}

type fakeTxKey struct{}

func newFakeStore(trips ...models.Trip) *fakeStore {
	f := &fakeStore{
		trips:     map[int64]models.Trip{},
		tickets:   map[int64]models.Ticket{},
		payments:  map[int64]models.Payment{},
		customers: map[string]models.Customer{},
	}
	for _, t := range trips {
		f.trips[t.ID] = t
	}
	return f
}

type fakeSnapshot struct {
	tickets   map[int64]models.Ticket
	payments  map[int64]models.Payment
	customers map[string]models.Customer
	next      [3]int64
}

func (f *fakeStore) snapshot() fakeSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := fakeSnapshot{
		tickets:   make(map[int64]models.Ticket, len(f.tickets)),
		payments:  make(map[int64]models.Payment, len(f.payments)),
		customers: make(map[string]models.Customer, len(f.customers)),
		next:      [3]int64{f.nextTicket, f.nextPayment, f.nextCustomer},
	}
	for k, v := range f.tickets {
		s.tickets[k] = v
	}
	for k, v := range f.payments {
		s.payments[k] = v
	}
	for k, v := range f.customers {
		s.customers[k] = v
	}
	return s
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets, f.payments, f.customers = s.tickets, s.payments, s.customers
	f.nextTicket, f.nextPayment, f.nextCustomer = s.next[0], s.next[1], s.next[2]
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	f.txMu.Lock()
	defer f.txMu.Unlock()

	snap := f.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStore) countTickets(tripID int64, seat int, status domain.TicketStatus) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickets {
		if t.TripID == tripID && (seat == 0 || t.SeatNumber == seat) && (status == "" || t.Status == status) {
			n++
		}
	}
	return n
}

func (f *fakeStore) rowCounts() (tickets, payments, customers int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickets), len(f.payments), len(f.customers)
}

type fakeTrips struct{ *fakeStore }

func (f fakeTrips) Get(_ context.Context, id int64) (models.Trip, error) {
	if f.tripErr != nil {
		return models.Trip{}, f.tripErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[id]
	if !ok {
		return models.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	return t, nil
}

func (f fakeTrips) GetForUpdate(ctx context.Context, id int64) (models.Trip, error) {
	return f.Get(ctx, id)
}

type fakeTickets struct{ *fakeStore }

func (f fakeTickets) ActiveSeatHolder(_ context.Context, tripID int64, seat int) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.skipSeatCheck {
		return 0, false, nil
	}
	for _, t := range f.tickets {
		if t.TripID == tripID && t.SeatNumber == seat && t.Status == domain.TicketActive {
			return t.ID, true, nil
		}
	}
	return 0, false, nil
}

func (f fakeTickets) Insert(_ context.Context, t models.Ticket) (int64, error) {
	if f.insertHook != nil {
		f.insertHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tickets {
		if existing.TripID == t.TripID && existing.SeatNumber == t.SeatNumber && existing.Status == domain.TicketActive {
			if f.rawDuplicate {
				return 0, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'tickets.uq_tickets_trip_active_seat'"}
			}
			return 0, domain.SeatTakenError(t.TripID, t.SeatNumber, nil)
		}
	}
	f.nextTicket++
	t.ID = f.nextTicket
	t.UpdatedAt = t.SoldAt
	f.tickets[t.ID] = t
	return t.ID, nil
}

func (f fakeTickets) GetForUpdate(_ context.Context, id int64) (models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
	}
	return t, nil
}

func (f fakeTickets) MarkCancelled(_ context.Context, id int64, note string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok || t.Status != domain.TicketActive {
		return false, nil
	}
	t.Status = domain.TicketCancelled
	if t.Notes != "" {
		t.Notes += "\n"
	}
	t.Notes += note
	t.UpdatedAt = at
	f.tickets[id] = t
	return true, nil
}

func (f fakeTickets) ListActiveSeats(_ context.Context, tripID int64) ([]models.OccupiedSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.OccupiedSeat{}
	for _, t := range f.tickets {
		if t.TripID == tripID && t.Status == domain.TicketActive {
			out = append(out, models.OccupiedSeat{SeatNumber: t.SeatNumber, TicketID: t.ID, PassengerName: f.customerByID(t.CustomerID).FullName})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (f fakeTickets) MarkUsedDeparted(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.tickets {
		if t.Status == domain.TicketActive && !f.trips[t.TripID].DepartureAt.After(now) {
			t.Status = domain.TicketUsed
			t.UpdatedAt = now
			f.tickets[id] = t
			n++
		}
	}
	return n, nil
}

func (f fakeTickets) Search(_ context.Context, filter models.TicketFilter) ([]models.TicketSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text := utils.FoldKey(filter.FreeText)
	out := []models.TicketSummary{}
	for _, t := range f.tickets {
		c := f.customerByID(t.CustomerID)
		trip := f.trips[t.TripID]
		if filter.Status != "" && filter.Status != domain.StatusAny && string(t.Status) != string(filter.Status) {
			continue
		}
		if filter.TripID > 0 && t.TripID != filter.TripID {
			continue
		}
		if filter.CarrierID > 0 && trip.CarrierID != filter.CarrierID {
			continue
		}
		if text != "" {
			hay := utils.FoldKey(strings.Join([]string{c.FullName, c.NationalID, c.Phone, trip.VehiclePlate, trip.CarrierName, trip.OriginStation, trip.DestinationStation}, "|"))
			if !strings.Contains(hay, text) {
				continue
			}
		}
		out = append(out, models.TicketSummary{
			TicketID: t.ID, TripID: t.TripID, SeatNumber: t.SeatNumber, Status: t.Status, Price: t.Price,
			PassengerName: c.FullName, NationalID: c.NationalID, Phone: c.Phone,
			VehiclePlate: trip.VehiclePlate, CarrierName: trip.CarrierName,
			OriginStation: trip.OriginStation, DestinationStation: trip.DestinationStation,
			DepartureAt: trip.DepartureAt, Salesperson: t.Salesperson, SoldAt: t.SoldAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SoldAt.Equal(out[j].SoldAt) {
			return out[i].SoldAt.After(out[j].SoldAt)
		}
		return out[i].TicketID > out[j].TicketID
	})
	return out, nil
}

func (f fakeTickets) GetDetail(_ context.Context, id int64) (models.TicketDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return models.TicketDetail{}, domain.NotFoundError{Resource: "ticket"}
	}
	return models.TicketDetail{
		Ticket:   t,
		Customer: f.customerByID(t.CustomerID),
		Trip:     f.trips[t.TripID],
		Payment:  f.payments[id],
	}, nil
}

func (f *fakeStore) customerByID(id int64) models.Customer {
	for _, c := range f.customers {
		if c.ID == id {
			return c
		}
	}
	return models.Customer{}
}

type fakePayments struct{ *fakeStore }

func (f fakePayments) Insert(_ context.Context, p models.Payment) (int64, error) {
	if f.paymentErr != nil {
		return 0, f.paymentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPayment++
	p.ID = f.nextPayment
	p.UpdatedAt = p.CreatedAt
	f.payments[p.TicketID] = p
	return p.ID, nil
}

func (f fakePayments) MarkRefunded(_ context.Context, ticketID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[ticketID]
	if !ok || p.Status != domain.PaymentSuccessful {
		return domain.InternalError{Msg: "no successful payment"}
	}
	p.Status = domain.PaymentRefunded
	p.UpdatedAt = at
	f.payments[ticketID] = p
	return nil
}

type fakeCustomers struct{ *fakeStore }

func (f fakeCustomers) FindOrCreate(_ context.Context, in models.CustomerInput, now time.Time) (models.Customer, error) {
	if f.customerErr != nil {
		return models.Customer{}, f.customerErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.customers[in.NationalID]; ok {
		return c, nil
	}
	f.nextCustomer++
	f.customerInserts++
	c := models.Customer{ID: f.nextCustomer, FullName: in.FullName, NationalID: in.NationalID, Phone: in.Phone, Email: in.Email, CreatedAt: now}
	f.customers[in.NationalID] = c
	return c, nil
}
