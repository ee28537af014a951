package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/bookingengine/internal/kafka"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"go.uber.org/zap"
)

// Sender renders booking notifications. Delivery is not wired to a mail
// provider; messages are written to the log.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject, err := Subject(event)
	if err != nil {
		logger.WithContext(ctx).Warn("no template for event", zap.String("type", event.Type), zap.String("pnr", event.PNR))
		return nil
	}
	logger.WithContext(ctx).Info("send email",
		zap.Int64("user_id", event.UserID),
		zap.String("subject", subject),
		zap.String("pnr", event.PNR),
	)
	return nil
}

func Subject(event kafka.BookingEvent) (string, error) {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s confirmed: %d seat(s) on flight %d", event.PNR, len(event.Seats), event.FlightID), nil
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking %s cancelled", event.PNR), nil
	}
	return "", fmt.Errorf("unknown event type %q", event.Type)
}
