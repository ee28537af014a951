package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/jackc/pgx/v5"
)

// BookingRepository is the read side used by the query projections.
type BookingRepository interface {
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	// ListTickets returns every ticket, or only those of userID when it is non-zero.
	ListTickets(ctx context.Context, userID int64) ([]domain.TicketRecord, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingWithPaymentSelect = `SELECT b.id, b.user_id, b.pnr, b.total_amount_cents, b.status, b.booking_date,
		p.id, p.transaction_id, p.external_ref, p.payment_mode, p.amount_cents, p.status, p.payment_date
	FROM bookings b
	JOIN payments p ON p.booking_id = b.id`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b  domain.Booking
		pm domain.Payment
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.PNR, &b.TotalAmountCents, &b.Status, &b.BookingDate,
		&pm.ID, &pm.TransactionID, &pm.ExternalRef, &pm.PaymentMode, &pm.AmountCents, &pm.Status, &pm.PaymentDate); err != nil {
		return nil, err
	}
	pm.BookingID = b.ID
	b.Payment = &pm
	b.Passengers = make([]domain.Passenger, 0)
	return &b, nil
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, bookingWithPaymentSelect+` WHERE b.pnr = $1`, pnr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "booking", Key: pnr}
		}
		return nil, fmt.Errorf("get booking %s: %w", pnr, err)
	}

	bookings := []domain.Booking{*b}
	if err := r.attachPassengers(ctx, bookings); err != nil {
		return nil, err
	}
	return &bookings[0], nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, bookingWithPaymentSelect+` WHERE b.user_id = $1 ORDER BY b.booking_date DESC, b.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of user %d: %w", userID, err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachPassengers(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// attachPassengers loads passengers with their ticket, flight and class for all
// bookings in one query.
func (r *PGBookingRepository) attachPassengers(ctx context.Context, bookings []domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]int64, len(bookings))
	index := make(map[int64]int, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		index[b.ID] = i
	}

	rows, err := r.db.Query(ctx, `SELECT ps.id, ps.booking_id, ps.name, ps.age, ps.gender,
			t.id, t.flight_id, t.class_id, t.seat_no, t.travel_date, t.status,
			f.flight_number, f.origin_code, f.destination_code, f.departure_time, f.arrival_time, f.base_price_cents,
			c.class_type, c.fare_cents, c.total_seats
		FROM passengers ps
		JOIN tickets t ON t.passenger_id = ps.id
		JOIN flights f ON f.id = t.flight_id
		JOIN classes c ON c.id = t.class_id
		WHERE ps.booking_id = ANY($1)
		ORDER BY ps.booking_id, ps.id`, ids)
	if err != nil {
		return fmt.Errorf("load passengers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p  domain.Passenger
			t  domain.Ticket
			f  domain.Flight
			cl domain.Class
		)
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Age, &p.Gender,
			&t.ID, &t.FlightID, &t.ClassID, &t.SeatNo, &t.TravelDate, &t.Status,
			&f.FlightNumber, &f.OriginCode, &f.DestinationCode, &f.DepartureTime, &f.ArrivalTime, &f.BasePriceCents,
			&cl.ClassType, &cl.FareCents, &cl.TotalSeats); err != nil {
			return err
		}
		f.ID = t.FlightID
		cl.ID, cl.FlightID = t.ClassID, t.FlightID
		t.PassengerID = p.ID
		t.Flight, t.Class = &f, &cl
		p.Ticket = &t

		i, ok := index[p.BookingID]
		if !ok {
			continue
		}
		bookings[i].Passengers = append(bookings[i].Passengers, p)
	}
	return rows.Err()
}

func (r *PGBookingRepository) ListTickets(ctx context.Context, userID int64) ([]domain.TicketRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT t.id, t.passenger_id, t.flight_id, t.class_id, t.seat_no, t.travel_date, t.status,
			ps.name, b.id, b.pnr, b.user_id, b.status,
			f.flight_number, f.origin_code, f.destination_code, f.departure_time, f.arrival_time, f.base_price_cents,
			c.class_type, c.fare_cents, c.total_seats
		FROM tickets t
		JOIN passengers ps ON ps.id = t.passenger_id
		JOIN bookings b ON b.id = ps.booking_id
		JOIN flights f ON f.id = t.flight_id
		JOIN classes c ON c.id = t.class_id
		WHERE ($1::bigint = 0 OR b.user_id = $1)
		ORDER BY t.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	records := make([]domain.TicketRecord, 0)
	for rows.Next() {
		var (
			rec domain.TicketRecord
			f   domain.Flight
			cl  domain.Class
		)
		if err := rows.Scan(&rec.ID, &rec.PassengerID, &rec.FlightID, &rec.ClassID, &rec.SeatNo, &rec.TravelDate, &rec.Status,
			&rec.PassengerName, &rec.BookingID, &rec.PNR, &rec.UserID, &rec.BookingStatus,
			&f.FlightNumber, &f.OriginCode, &f.DestinationCode, &f.DepartureTime, &f.ArrivalTime, &f.BasePriceCents,
			&cl.ClassType, &cl.FareCents, &cl.TotalSeats); err != nil {
			return nil, err
		}
		f.ID = rec.FlightID
		cl.ID, cl.FlightID = rec.ClassID, rec.FlightID
		rec.Flight, rec.Class = &f, &cl
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
