package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{"id", "user_id", "pnr", "total_amount_cents", "status", "booking_date",
	"pid", "transaction_id", "external_ref", "payment_mode", "amount_cents", "pstatus", "payment_date"}

var passengerCols = []string{"id", "booking_id", "name", "age", "gender",
	"tid", "flight_id", "class_id", "seat_no", "travel_date", "tstatus",
	"flight_number", "origin_code", "destination_code", "departure_time", "arrival_time", "base_price_cents",
	"class_type", "fare_cents", "total_seats"}

func TestBookingRepository_GetByPNR(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)
	ctx := context.Background()
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	dep := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM bookings b\s+JOIN payments p ON p.booking_id = b.id WHERE b.pnr = \$1`).
		WithArgs("PNRAAAAAAAA").
		WillReturnRows(mock.NewRows(bookingCols).
			AddRow(int64(5), int64(7), "PNRAAAAAAAA", int64(10000), domain.BookingStatusConfirmed, at,
				int64(6), "TXN-1", "ext", domain.PaymentModeCash, int64(10000), domain.PaymentStatusSuccess, at))
	mock.ExpectQuery(`FROM passengers ps .* WHERE ps.booking_id = ANY\(\$1\)`).
		WithArgs([]int64{5}).
		WillReturnRows(mock.NewRows(passengerCols).
			AddRow(int64(8), int64(5), "Ann", 30, domain.GenderFemale,
				int64(9), int64(1), int64(10), "A1", dep, domain.TicketStatusBooked,
				"AI101", "DEL", "BOM", dep, dep.Add(2*time.Hour), int64(4000),
				"Economy", int64(5000), 30).
			AddRow(int64(11), int64(5), "Bo", 41, domain.GenderMale,
				int64(12), int64(1), int64(10), "A2", dep, domain.TicketStatusBooked,
				"AI101", "DEL", "BOM", dep, dep.Add(2*time.Hour), int64(4000),
				"Economy", int64(5000), 30))

	b, err := repo.GetByPNR(ctx, "PNRAAAAAAAA")

	require.NoError(t, err)
	assert.Equal(t, int64(7), b.UserID)
	require.NotNil(t, b.Payment)
	assert.Equal(t, int64(5), b.Payment.BookingID)
	assert.Equal(t, "TXN-1", b.Payment.TransactionID)
	require.Len(t, b.Passengers, 2)
	assert.Equal(t, "A2", b.Passengers[1].Ticket.SeatNo)
	assert.Equal(t, int64(11), b.Passengers[1].Ticket.PassengerID)
	assert.Equal(t, "AI101", b.Passengers[0].Ticket.Flight.FlightNumber)
	assert.Equal(t, int64(10), b.Passengers[0].Ticket.Class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByPNR_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(`WHERE b.pnr = \$1`).WithArgs("PNRNOPE0000").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByPNR(context.Background(), "PNRNOPE0000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepository_ListByUser_Empty(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(`WHERE b.user_id = \$1 ORDER BY`).WithArgs(int64(7)).WillReturnRows(mock.NewRows(bookingCols))

	got, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	// no passenger query for an empty result
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListTickets(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)
	dep := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	cols := []string{"id", "passenger_id", "flight_id", "class_id", "seat_no", "travel_date", "status",
		"name", "booking_id", "pnr", "user_id", "booking_status",
		"flight_number", "origin_code", "destination_code", "departure_time", "arrival_time", "base_price_cents",
		"class_type", "fare_cents", "total_seats"}
	mock.ExpectQuery(`FROM tickets t .* WHERE \(\$1::bigint = 0 OR b.user_id = \$1\)`).
		WithArgs(int64(0)).
		WillReturnRows(mock.NewRows(cols).
			AddRow(int64(9), int64(8), int64(1), int64(10), "A1", dep, domain.TicketStatusCancelled,
				"Ann", int64(5), "PNRAAAAAAAA", int64(7), domain.BookingStatusCancelled,
				"AI101", "DEL", "BOM", dep, dep.Add(2*time.Hour), int64(4000),
				"Business", int64(9000), 8))

	got, err := repo.ListTickets(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].PassengerName)
	assert.Equal(t, domain.TicketStatusCancelled, got[0].Status)
	assert.Equal(t, domain.BookingStatusCancelled, got[0].BookingStatus)
	assert.Equal(t, "Business", got[0].Class.ClassType)
	assert.Equal(t, int64(1), got[0].Flight.ID)
}

func TestNewBookingRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	assert.NotNil(t, NewBookingRepository(mock))
}
