package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"go.uber.org/zap"
)

func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, pnr string) (*domain.Booking, error) {
	pnr = NormalizePNR(pnr)
	if pnr == "" {
		return nil, domain.NewValidationError("pnr", "pnr is required")
	}
	b, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(b.UserID) {
		return nil, fmt.Errorf("%w: booking %s belongs to another user", domain.ErrForbidden, pnr)
	}
	return b, nil
}

// ListBookings returns the bookings of ownerID, or of the actor when ownerID is zero.
func (s *BookingService) ListBookings(ctx context.Context, actor domain.Actor, ownerID int64) ([]domain.Booking, error) {
	if ownerID == 0 {
		ownerID = actor.UserID
	}
	if !actor.CanAccess(ownerID) {
		return nil, fmt.Errorf("%w: cannot list bookings of user %d", domain.ErrForbidden, ownerID)
	}
	return s.bookings.ListByUser(ctx, ownerID)
}

func (s *BookingService) ListTickets(ctx context.Context, actor domain.Actor) ([]domain.TicketRecord, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: listing tickets requires admin role", domain.ErrForbidden)
	}
	return s.bookings.ListTickets(ctx, 0)
}

func (s *BookingService) UserReport(ctx context.Context, actor domain.Actor, userID int64) (*domain.UserReport, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: reports require admin role", domain.ErrForbidden)
	}
	if userID <= 0 {
		return nil, domain.NewValidationError("user_id", "must be positive")
	}
	tickets, err := s.bookings.ListTickets(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.UserReport{UserID: userID, TotalTickets: len(tickets), Tickets: tickets}, nil
}

// CompleteDepartedTickets marks Booked tickets whose travel date is more than
// grace in the past as Completed. Bookings keep their status.
func (s *BookingService) CompleteDepartedTickets(ctx context.Context, grace time.Duration) (int64, error) {
	before := s.now().Add(-grace)
	n, err := s.flights.CompleteTicketsBefore(ctx, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.WithContext(ctx).Info("tickets completed", zap.Int64("count", n), zap.Time("before", before))
	}
	return n, nil
}
