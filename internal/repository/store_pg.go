package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Store opens units of work. fn runs inside one serializable transaction that is
// committed when fn returns nil and rolled back on any other exit.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write-side view of the schema, bound to one transaction.
type Tx interface {
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	LockClass(ctx context.Context, flightID, classID int64) (*domain.Class, error)
	CountBookedTickets(ctx context.Context, classID int64) (int, error)
	FindBookedSeats(ctx context.Context, flightID int64, seats []string) ([]string, error)

	InsertBooking(ctx context.Context, b *domain.Booking) error
	InsertPayment(ctx context.Context, p *domain.Payment) error
	InsertPassenger(ctx context.Context, p *domain.Passenger) error
	InsertTicket(ctx context.Context, t *domain.Ticket) error

	LockBookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	SetBookingStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error
	// SetTicketStatusForBooking moves the booking's tickets that are currently in
	// from to status and reports how many rows changed.
	SetTicketStatusForBooking(ctx context.Context, bookingID int64, from, to domain.TicketStatus) (int64, error)
	SetPaymentStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) error
}

type PGStore struct {
	db DB
}

func NewStore(db DB) Store {
	return &PGStore{db: db}
}

func (s *PGStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(&pgTx{queries{q: tx}}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translateError(err)
	}
	committed = true
	return nil
}

type pgTx struct {
	queries
}

func (t *pgTx) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := t.getFlight(ctx, id)
	return f, translateError(err)
}

func (t *pgTx) LockClass(ctx context.Context, flightID, classID int64) (*domain.Class, error) {
	c, err := t.getClass(ctx, flightID, classID, true)
	return c, translateError(err)
}

func (t *pgTx) CountBookedTickets(ctx context.Context, classID int64) (int, error) {
	n, err := t.countBookedTickets(ctx, classID)
	return n, translateError(err)
}

func (t *pgTx) FindBookedSeats(ctx context.Context, flightID int64, seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, nil
	}
	taken, err := t.bookedSeats(ctx, flightID, seats)
	return taken, translateError(err)
}

func (t *pgTx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	err := t.q.QueryRow(ctx, `INSERT INTO bookings (user_id, pnr, total_amount_cents, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, booking_date`, b.UserID, b.PNR, b.TotalAmountCents, b.Status).
		Scan(&b.ID, &b.BookingDate)
	if err != nil {
		return translateError(fmt.Errorf("insert booking: %w", err))
	}
	return nil
}

func (t *pgTx) InsertPayment(ctx context.Context, p *domain.Payment) error {
	err := t.q.QueryRow(ctx, `INSERT INTO payments (booking_id, transaction_id, external_ref, payment_mode, amount_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, payment_date`, p.BookingID, p.TransactionID, p.ExternalRef, p.PaymentMode, p.AmountCents, p.Status).
		Scan(&p.ID, &p.PaymentDate)
	if err != nil {
		return translateError(fmt.Errorf("insert payment: %w", err))
	}
	return nil
}

func (t *pgTx) InsertPassenger(ctx context.Context, p *domain.Passenger) error {
	err := t.q.QueryRow(ctx, `INSERT INTO passengers (booking_id, name, age, gender)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, p.BookingID, p.Name, p.Age, p.Gender).
		Scan(&p.ID)
	if err != nil {
		return translateError(fmt.Errorf("insert passenger: %w", err))
	}
	return nil
}

func (t *pgTx) InsertTicket(ctx context.Context, tk *domain.Ticket) error {
	err := t.q.QueryRow(ctx, `INSERT INTO tickets (passenger_id, flight_id, class_id, seat_no, travel_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`, tk.PassengerID, tk.FlightID, tk.ClassID, tk.SeatNo, tk.TravelDate, tk.Status).
		Scan(&tk.ID)
	if err != nil {
		return translateError(fmt.Errorf("insert ticket: %w", err))
	}
	return nil
}

func (t *pgTx) LockBookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	var b domain.Booking
	err := t.q.QueryRow(ctx, `SELECT id, user_id, pnr, total_amount_cents, status, booking_date FROM bookings WHERE pnr=$1 FOR UPDATE`, pnr).
		Scan(&b.ID, &b.UserID, &b.PNR, &b.TotalAmountCents, &b.Status, &b.BookingDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "booking", Key: pnr}
		}
		return nil, translateError(fmt.Errorf("lock booking %s: %w", pnr, err))
	}
	return &b, nil
}

func (t *pgTx) SetBookingStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error {
	tag, err := t.q.Exec(ctx, `UPDATE bookings SET status=$2 WHERE id=$1`, bookingID, status)
	if err != nil {
		return translateError(fmt.Errorf("update booking status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "booking", Key: fmt.Sprint(bookingID)}
	}
	return nil
}

func (t *pgTx) SetTicketStatusForBooking(ctx context.Context, bookingID int64, from, to domain.TicketStatus) (int64, error) {
	tag, err := t.q.Exec(ctx, `UPDATE tickets AS t SET status=$3
		FROM passengers AS p
		WHERE t.passenger_id = p.id AND p.booking_id = $1 AND t.status = $2`, bookingID, from, to)
	if err != nil {
		return 0, translateError(fmt.Errorf("update ticket status: %w", err))
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) SetPaymentStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) error {
	tag, err := t.q.Exec(ctx, `UPDATE payments SET status=$2 WHERE booking_id=$1`, bookingID, status)
	if err != nil {
		return translateError(fmt.Errorf("update payment status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "payment for booking", Key: fmt.Sprint(bookingID)}
	}
	return nil
}

var _ Store = (*PGStore)(nil)
var _ Tx = (*pgTx)(nil)
