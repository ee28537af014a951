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

func TestFlightRepository_GetClass_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightRepository(mock)

	mock.ExpectQuery(`FROM classes WHERE id=\$1 AND flight_id=\$2$`).
		WithArgs(int64(99), int64(1)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetClass(context.Background(), 1, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightRepository_GetFlight_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightRepository(mock)

	mock.ExpectQuery(`FROM flights WHERE id=\$1`).WithArgs(int64(3)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetFlight(context.Background(), 3)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "flight", nf.Entity)
}

func TestFlightRepository_BookedSeats(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightRepository(mock)

	mock.ExpectQuery(`SELECT seat_no FROM tickets WHERE flight_id=\$1 AND status=\$2 ORDER BY seat_no`).
		WithArgs(int64(1), domain.TicketStatusBooked).
		WillReturnRows(mock.NewRows([]string{"seat_no"}).AddRow("A1").AddRow("B4"))

	seats, err := repo.BookedSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B4"}, seats)
}

func TestFlightRepository_CountBookedTickets(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightRepository(mock)

	mock.ExpectQuery(`SELECT count\(\*\) FROM tickets`).
		WithArgs(int64(10), domain.TicketStatusBooked).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.CountBookedTickets(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestFlightRepository_CompleteTicketsBefore(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightRepository(mock)
	before := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE tickets SET status=\$1 WHERE status=\$2 AND travel_date < \$3`).
		WithArgs(domain.TicketStatusCompleted, domain.TicketStatusBooked, before).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	n, err := repo.CompleteTicketsBefore(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
