package flights

import (
	"context"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/repository"
	"github.com/Domenick1991/bookingengine/internal/service/booking"
)

type FlightUseCase interface {
	Availability(ctx context.Context, flightID, classID int64) (*domain.Availability, error)
}

// FlightService answers inventory reads outside of any write transaction.
// Figures are recomputed from ticket rows on every call.
type FlightService struct {
	repo      repository.FlightRepository
	inventory booking.InventoryResolver
}

func NewFlightService(repo repository.FlightRepository) *FlightService {
	return &FlightService{repo: repo}
}

func (s *FlightService) Availability(ctx context.Context, flightID, classID int64) (*domain.Availability, error) {
	if flightID <= 0 {
		return nil, domain.NewValidationError("flight_id", "must be positive")
	}
	if classID <= 0 {
		return nil, domain.NewValidationError("class_id", "must be positive")
	}

	if _, err := s.repo.GetFlight(ctx, flightID); err != nil {
		return nil, err
	}
	class, err := s.repo.GetClass(ctx, flightID, classID)
	if err != nil {
		return nil, err
	}
	available, err := s.inventory.Available(ctx, s.repo, class)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.BookedSeats(ctx, flightID)
	if err != nil {
		return nil, err
	}

	return &domain.Availability{
		FlightID:   flightID,
		ClassID:    classID,
		TotalSeats: class.TotalSeats,
		Booked:     class.TotalSeats - available,
		Available:  available,
		TakenSeats: taken,
	}, nil
}

var _ FlightUseCase = (*FlightService)(nil)
