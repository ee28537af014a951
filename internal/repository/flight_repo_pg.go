package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/bookingengine/internal/domain"
)

// FlightRepository reads flight inventory outside of a write transaction.
type FlightRepository interface {
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	GetClass(ctx context.Context, flightID, classID int64) (*domain.Class, error)
	CountBookedTickets(ctx context.Context, classID int64) (int, error)
	BookedSeats(ctx context.Context, flightID int64) ([]string, error)
	CompleteTicketsBefore(ctx context.Context, before time.Time) (int64, error)
}

type PGFlightRepository struct {
	queries
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{queries{q: db}}
}

func (r *PGFlightRepository) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.getFlight(ctx, id)
}

func (r *PGFlightRepository) GetClass(ctx context.Context, flightID, classID int64) (*domain.Class, error) {
	return r.getClass(ctx, flightID, classID, false)
}

func (r *PGFlightRepository) CountBookedTickets(ctx context.Context, classID int64) (int, error) {
	return r.countBookedTickets(ctx, classID)
}

func (r *PGFlightRepository) BookedSeats(ctx context.Context, flightID int64) ([]string, error) {
	return r.bookedSeats(ctx, flightID, nil)
}

func (r *PGFlightRepository) CompleteTicketsBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.completeTicketsBefore(ctx, before)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
