package booking

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/repository"
)

// memState is a flat copy of the schema. Nested pointers are rebuilt on read.
type memState struct {
	flights    map[int64]domain.Flight
	classes    map[int64]domain.Class
	bookings   map[int64]domain.Booking
	payments   map[int64]domain.Payment // by booking id
	passengers map[int64]domain.Passenger
	tickets    map[int64]domain.Ticket
	nextID     int64
}

func newMemState() *memState {
	return &memState{
		flights:    map[int64]domain.Flight{},
		classes:    map[int64]domain.Class{},
		bookings:   map[int64]domain.Booking{},
		payments:   map[int64]domain.Payment{},
		passengers: map[int64]domain.Passenger{},
		tickets:    map[int64]domain.Ticket{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.flights {
		c.flights[k] = v
	}
	for k, v := range s.classes {
		c.classes[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.passengers {
		c.passengers[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	c.nextID = s.nextID
	return c
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// fakeStore runs every unit of work under one mutex against a private copy of
// the state and publishes the copy only on success. It also serves the read
// repositories.
type fakeStore struct {
	mu    sync.Mutex
	state *memState

	txCount int
	commits int

	// serializationFailures commits that fail with ErrSerializationFailure.
	serializationFailures int
	// failTicketAt makes the n-th ticket insert (1-based) of every transaction fail.
	failTicketAt int
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: newMemState()}
}

func (f *fakeStore) addFlight(fl domain.Flight) domain.Flight {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.flights[fl.ID] = fl
	return fl
}

func (f *fakeStore) addClass(c domain.Class) domain.Class {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.classes[c.ID] = c
	return c
}

func (f *fakeStore) counts() (bookings, payments, passengers, tickets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.bookings), len(f.state.payments), len(f.state.passengers), len(f.state.tickets)
}

func (f *fakeStore) transactions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txCount
}

func (f *fakeStore) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCount++

	work := f.state.clone()
	if err := fn(&fakeTx{store: f, state: work}); err != nil {
		return err
	}
	if f.serializationFailures > 0 {
		f.serializationFailures--
		return fmt.Errorf("%w: could not serialize access", repository.ErrSerializationFailure)
	}
	f.state = work
	f.commits++
	return nil
}

type fakeTx struct {
	store   *fakeStore
	state   *memState
	tickets int
}

func (t *fakeTx) GetFlight(_ context.Context, id int64) (*domain.Flight, error) {
	fl, ok := t.state.flights[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "flight", Key: strconv.FormatInt(id, 10)}
	}
	return &fl, nil
}

func (t *fakeTx) LockClass(_ context.Context, flightID, classID int64) (*domain.Class, error) {
	return t.state.class(flightID, classID)
}

func (t *fakeTx) CountBookedTickets(_ context.Context, classID int64) (int, error) {
	return t.state.countBooked(classID), nil
}

func (t *fakeTx) FindBookedSeats(_ context.Context, flightID int64, seats []string) ([]string, error) {
	want := map[string]bool{}
	for _, s := range seats {
		want[s] = true
	}
	var taken []string
	for _, s := range t.state.bookedSeats(flightID) {
		if want[s] {
			taken = append(taken, s)
		}
	}
	return taken, nil
}

func (t *fakeTx) InsertBooking(_ context.Context, b *domain.Booking) error {
	for _, existing := range t.state.bookings {
		if existing.PNR == b.PNR {
			return fmt.Errorf("%w: bookings_pnr_uniq", domain.ErrReferenceCollision)
		}
	}
	b.ID = t.state.id()
	b.BookingDate = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	flat := *b
	flat.Payment, flat.Passengers = nil, nil
	t.state.bookings[b.ID] = flat
	return nil
}

func (t *fakeTx) InsertPayment(_ context.Context, p *domain.Payment) error {
	for _, existing := range t.state.payments {
		if existing.TransactionID == p.TransactionID {
			return fmt.Errorf("%w: payments_transaction_id_uniq", domain.ErrReferenceCollision)
		}
	}
	p.ID = t.state.id()
	p.PaymentDate = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	t.state.payments[p.BookingID] = *p
	return nil
}

func (t *fakeTx) InsertPassenger(_ context.Context, p *domain.Passenger) error {
	p.ID = t.state.id()
	flat := *p
	flat.Ticket = nil
	t.state.passengers[p.ID] = flat
	return nil
}

func (t *fakeTx) InsertTicket(_ context.Context, tk *domain.Ticket) error {
	t.tickets++
	if t.store.failTicketAt > 0 && t.tickets == t.store.failTicketAt {
		return fmt.Errorf("insert ticket: connection reset")
	}
	for _, s := range t.state.bookedSeats(tk.FlightID) {
		if s == tk.SeatNo {
			return &domain.SeatConflictError{Seat: tk.SeatNo}
		}
	}
	tk.ID = t.state.id()
	flat := *tk
	flat.Flight, flat.Class = nil, nil
	t.state.tickets[tk.ID] = flat
	return nil
}

func (t *fakeTx) LockBookingByPNR(_ context.Context, pnr string) (*domain.Booking, error) {
	for _, b := range t.state.bookings {
		if b.PNR == pnr {
			return &b, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "booking", Key: pnr}
}

func (t *fakeTx) SetBookingStatus(_ context.Context, bookingID int64, status domain.BookingStatus) error {
	b, ok := t.state.bookings[bookingID]
	if !ok {
		return &domain.NotFoundError{Entity: "booking", Key: strconv.FormatInt(bookingID, 10)}
	}
	b.Status = status
	t.state.bookings[bookingID] = b
	return nil
}

func (t *fakeTx) SetTicketStatusForBooking(_ context.Context, bookingID int64, from, to domain.TicketStatus) (int64, error) {
	var n int64
	for id, tk := range t.state.tickets {
		if t.state.passengers[tk.PassengerID].BookingID == bookingID && tk.Status == from {
			tk.Status = to
			t.state.tickets[id] = tk
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) SetPaymentStatus(_ context.Context, bookingID int64, status domain.PaymentStatus) error {
	p, ok := t.state.payments[bookingID]
	if !ok {
		return &domain.NotFoundError{Entity: "payment for booking", Key: strconv.FormatInt(bookingID, 10)}
	}
	p.Status = status
	t.state.payments[bookingID] = p
	return nil
}

func (s *memState) class(flightID, classID int64) (*domain.Class, error) {
	c, ok := s.classes[classID]
	if !ok || c.FlightID != flightID {
		return nil, &domain.NotFoundError{Entity: "class", Key: fmt.Sprintf("%d on flight %d", classID, flightID)}
	}
	return &c, nil
}

func (s *memState) countBooked(classID int64) int {
	n := 0
	for _, tk := range s.tickets {
		if tk.ClassID == classID && tk.Status == domain.TicketStatusBooked {
			n++
		}
	}
	return n
}

func (s *memState) bookedSeats(flightID int64) []string {
	seats := make([]string, 0)
	for _, tk := range s.tickets {
		if tk.FlightID == flightID && tk.Status == domain.TicketStatusBooked {
			seats = append(seats, tk.SeatNo)
		}
	}
	sort.Strings(seats)
	return seats
}

func (s *memState) nested(b domain.Booking) domain.Booking {
	if p, ok := s.payments[b.ID]; ok {
		b.Payment = &p
	}
	b.Passengers = make([]domain.Passenger, 0)
	ids := make([]int64, 0)
	for id, p := range s.passengers {
		if p.BookingID == b.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := s.passengers[id]
		for _, tk := range s.tickets {
			if tk.PassengerID == p.ID {
				tk := tk
				fl := s.flights[tk.FlightID]
				cl := s.classes[tk.ClassID]
				tk.Flight, tk.Class = &fl, &cl
				p.Ticket = &tk
			}
		}
		b.Passengers = append(b.Passengers, p)
	}
	return b
}

// BookingRepository

func (f *fakeStore) GetByPNR(_ context.Context, pnr string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.state.bookings {
		if b.PNR == pnr {
			nb := f.state.nested(b)
			return &nb, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "booking", Key: pnr}
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range f.state.bookings {
		if b.UserID == userID {
			out = append(out, f.state.nested(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) ListTickets(_ context.Context, userID int64) ([]domain.TicketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.TicketRecord, 0)
	for _, tk := range f.state.tickets {
		p := f.state.passengers[tk.PassengerID]
		b := f.state.bookings[p.BookingID]
		if userID != 0 && b.UserID != userID {
			continue
		}
		out = append(out, domain.TicketRecord{
			Ticket:        tk,
			PassengerName: p.Name,
			BookingID:     b.ID,
			PNR:           b.PNR,
			UserID:        b.UserID,
			BookingStatus: b.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FlightRepository

func (f *fakeStore) GetFlight(_ context.Context, id int64) (*domain.Flight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.state.flights[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "flight", Key: strconv.FormatInt(id, 10)}
	}
	return &fl, nil
}

func (f *fakeStore) GetClass(_ context.Context, flightID, classID int64) (*domain.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.class(flightID, classID)
}

func (f *fakeStore) CountBookedTickets(_ context.Context, classID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.countBooked(classID), nil
}

func (f *fakeStore) BookedSeats(_ context.Context, flightID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.bookedSeats(flightID), nil
}

func (f *fakeStore) CompleteTicketsBefore(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, tk := range f.state.tickets {
		if tk.Status == domain.TicketStatusBooked && tk.TravelDate.Before(before) {
			tk.Status = domain.TicketStatusCompleted
			f.state.tickets[id] = tk
			n++
		}
	}
	return n, nil
}

var (
	_ repository.Store             = (*fakeStore)(nil)
	_ repository.BookingRepository = (*fakeStore)(nil)
	_ repository.FlightRepository  = (*fakeStore)(nil)
	_ repository.Tx                = (*fakeTx)(nil)
)
