package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func TestSeatFromDetail(t *testing.T) {
	assert.Equal(t, "A1", seatFromDetail("Key (flight_id, seat_no)=(1, A1) already exists."))
	assert.Equal(t, "K12", seatFromDetail("Key (flight_id, seat_no)=(204, K12) already exists."))
	assert.Equal(t, "", seatFromDetail(""))
	assert.Equal(t, "", seatFromDetail("duplicate key"))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	plain := errors.New("plain")
	assert.Same(t, plain, translateError(plain))

	var conflict *domain.SeatConflictError
	err := translateError(&pgconn.PgError{Code: "23505", ConstraintName: constraintActiveSeat})
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, "", conflict.Seat)

	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "23505", ConstraintName: constraintPNR}), domain.ErrReferenceCollision)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "40001"}), ErrSerializationFailure)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "40P01"}), ErrSerializationFailure)

	// other unique violations are not domain errors
	other := &pgconn.PgError{Code: "23505", ConstraintName: "tickets_passenger_uniq"}
	assert.Same(t, error(other), translateError(other))
}

func TestMigrate(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS flights`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, Migrate(context.Background(), mock))
	assert.Contains(t, schemaSQL, "tickets_active_seat_uniq")
	assert.NoError(t, mock.ExpectationsWereMet())
}
