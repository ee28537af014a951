package booking

import (
	"context"
	"fmt"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/kafka"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/Domenick1991/bookingengine/internal/repository"
	"github.com/Domenick1991/bookingengine/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CancelBooking cancels the booking with the given PNR together with all of its
// Booked tickets and marks its payment Failed. A booking whose tickets were all
// completed cannot be cancelled. Seats become free again because
// availability only counts Booked tickets.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, pnr string) (err error) {
	pnr = NormalizePNR(pnr)
	ctx, span := telemetry.StartSpan(ctx, "booking.cancel", attribute.String("booking.pnr", pnr))
	defer func() { telemetry.EndSpan(span, err) }()
	log := logger.WithContext(ctx)

	if pnr == "" {
		return domain.NewValidationError("pnr", "pnr is required")
	}

	var cancelled *domain.Booking
	err = s.withRetry(ctx, "cancel", func(tx repository.Tx) error {
		b, err := tx.LockBookingByPNR(ctx, pnr)
		if err != nil {
			return err
		}
		if !actor.CanAccess(b.UserID) {
			return fmt.Errorf("%w: booking %s belongs to another user", domain.ErrForbidden, pnr)
		}
		if b.Status == domain.BookingStatusCancelled {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyCancelled, pnr)
		}

		if err := tx.SetBookingStatus(ctx, b.ID, domain.BookingStatusCancelled); err != nil {
			return err
		}
		n, err := tx.SetTicketStatusForBooking(ctx, b.ID, domain.TicketStatusBooked, domain.TicketStatusCancelled)
		if err != nil {
			return err
		}
		if n == 0 {
			// every ticket was completed by the departure sweep
			return domain.NewValidationError("pnr", "booking has already been flown")
		}
		if err := tx.SetPaymentStatus(ctx, b.ID, domain.PaymentStatusFailed); err != nil {
			return err
		}
		b.Status = domain.BookingStatusCancelled
		cancelled = b
		return nil
	})
	if err != nil {
		s.metrics.Failed(ctx, "cancel", reason(err))
		log.Info("cancellation rejected", zap.String("pnr", pnr), zap.Int64("user_id", actor.UserID), zap.Error(err))
		return err
	}

	s.metrics.Cancelled(ctx)
	log.Info("booking cancelled", zap.String("pnr", pnr), zap.Int64("user_id", actor.UserID))

	event := kafka.BookingEvent{
		Type:             kafka.EventBookingCancelled,
		PNR:              cancelled.PNR,
		UserID:           cancelled.UserID,
		Status:           string(cancelled.Status),
		TotalAmountCents: cancelled.TotalAmountCents,
		OccurredAt:       s.now(),
	}
	if err := s.publish(ctx, event); err != nil {
		log.Warn("failed to publish booking event", zap.String("type", event.Type), zap.String("pnr", pnr), zap.Error(err))
	}
	return nil
}
