package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/jackc/pgx/v5"
)

// queries holds the SQL shared by transactional and pool-level access.
type queries struct {
	q querier
}

const flightColumns = `id, flight_number, origin_code, destination_code, departure_time, arrival_time, base_price_cents`

const classColumns = `id, flight_id, class_type, fare_cents, total_seats`

func (r queries) getFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.q.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.OriginCode, &f.DestinationCode, &f.DepartureTime, &f.ArrivalTime, &f.BasePriceCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "flight", Key: strconv.FormatInt(id, 10)}
		}
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return &f, nil
}

func (r queries) getClass(ctx context.Context, flightID, classID int64, forUpdate bool) (*domain.Class, error) {
	sql := `SELECT ` + classColumns + ` FROM classes WHERE id=$1 AND flight_id=$2`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	var c domain.Class
	if err := r.q.QueryRow(ctx, sql, classID, flightID).Scan(&c.ID, &c.FlightID, &c.ClassType, &c.FareCents, &c.TotalSeats); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "class", Key: fmt.Sprintf("%d on flight %d", classID, flightID)}
		}
		return nil, fmt.Errorf("get class %d: %w", classID, err)
	}
	return &c, nil
}

func (r queries) countBookedTickets(ctx context.Context, classID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM tickets WHERE class_id=$1 AND status=$2`, classID, domain.TicketStatusBooked).Scan(&n); err != nil {
		return 0, fmt.Errorf("count booked tickets of class %d: %w", classID, err)
	}
	return n, nil
}

// bookedSeats returns the Booked seats on a flight, restricted to only when it is non-empty.
func (r queries) bookedSeats(ctx context.Context, flightID int64, only []string) ([]string, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(only) > 0 {
		rows, err = r.q.Query(ctx, `SELECT seat_no FROM tickets WHERE flight_id=$1 AND status=$2 AND seat_no = ANY($3) ORDER BY seat_no`, flightID, domain.TicketStatusBooked, only)
	} else {
		rows, err = r.q.Query(ctx, `SELECT seat_no FROM tickets WHERE flight_id=$1 AND status=$2 ORDER BY seat_no`, flightID, domain.TicketStatusBooked)
	}
	if err != nil {
		return nil, fmt.Errorf("booked seats of flight %d: %w", flightID, err)
	}
	defer rows.Close()

	seats := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r queries) completeTicketsBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE tickets SET status=$1 WHERE status=$2 AND travel_date < $3`, domain.TicketStatusCompleted, domain.TicketStatusBooked, before)
	if err != nil {
		return 0, fmt.Errorf("complete tickets: %w", err)
	}
	return tag.RowsAffected(), nil
}
