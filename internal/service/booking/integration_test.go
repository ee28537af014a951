package booking

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when INTEGRATION_TEST=true and TEST_DATABASE_DSN is set.
// Two bookings race for the last seat of a class with different seat numbers,
// so only the serializable transaction can keep the class from overselling.
func TestIntegration_ConcurrentLastSeat(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("set INTEGRATION_TEST=true to run")
	}
	dsn := os.Getenv("TEST_DATABASE_DSN")
	require.NotEmpty(t, dsn, "TEST_DATABASE_DSN")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, repository.Migrate(ctx, pool))

	flights := repository.NewFlightRepository(pool)
	svc := NewBookingService(repository.NewStore(pool), repository.NewBookingRepository(pool), flights, nil, "",
		WithTxRetries(10))

	dep := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	for round := 0; round < 10; round++ {
		var flightID, classID int64
		number := fmt.Sprintf("RC%d-%d", time.Now().UnixNano()%1_000_000, round)
		require.NoError(t, pool.QueryRow(ctx, `INSERT INTO flights (flight_number, origin_code, destination_code, departure_time, arrival_time)
			VALUES ($1, 'DEL', 'BOM', $2, $3) RETURNING id`, number, dep, dep.Add(2*time.Hour)).Scan(&flightID))
		require.NoError(t, pool.QueryRow(ctx, `INSERT INTO classes (flight_id, class_type, fare_cents, total_seats)
			VALUES ($1, 'Economy', 5000, 1) RETURNING id`, flightID).Scan(&classID))

		start := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i, actor := range []domain.Actor{alice, bob} {
			wg.Add(1)
			go func(i int, actor domain.Actor, seat string) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.CreateBooking(ctx, actor, CreateBookingInput{
					FlightID:   flightID,
					ClassID:    classID,
					Passengers: passengers(seat),
					Payment:    PaymentInput{Mode: domain.PaymentModeUPI, TransactionRef: "race"},
				})
			}(i, actor, []string{"A1", "B1"}[i])
		}
		close(start)
		wg.Wait()

		var ok, capacity int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrCapacity, "round %d", round):
				capacity++
			}
		}
		assert.Equal(t, 1, ok, "round %d", round)
		assert.Equal(t, 1, capacity, "round %d", round)

		n, err := flights.CountBookedTickets(ctx, classID)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "round %d", round)
	}
}
