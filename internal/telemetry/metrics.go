package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BookingMetrics groups the instruments recorded by the booking engine.
// A nil *BookingMetrics records nothing.
type BookingMetrics struct {
	created    metric.Int64Counter
	failed     metric.Int64Counter
	cancelled  metric.Int64Counter
	retries    metric.Int64Counter
	txDuration metric.Float64Histogram
}

func NewBookingMetrics(meter metric.Meter) (*BookingMetrics, error) {
	created, err := meter.Int64Counter("bookings_created_total",
		metric.WithDescription("Bookings committed"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("bookings_failed_total",
		metric.WithDescription("Booking attempts rejected or rolled back, by reason"))
	if err != nil {
		return nil, err
	}
	cancelled, err := meter.Int64Counter("bookings_cancelled_total",
		metric.WithDescription("Bookings cancelled"))
	if err != nil {
		return nil, err
	}
	retries, err := meter.Int64Counter("booking_tx_retries_total",
		metric.WithDescription("Transactions retried after serialization failures or reference collisions"))
	if err != nil {
		return nil, err
	}
	txDuration, err := meter.Float64Histogram("booking_tx_duration_seconds",
		metric.WithDescription("Duration of booking write transactions"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5),
	)
	if err != nil {
		return nil, err
	}
	return &BookingMetrics{
		created:    created,
		failed:     failed,
		cancelled:  cancelled,
		retries:    retries,
		txDuration: txDuration,
	}, nil
}

func (m *BookingMetrics) Created(ctx context.Context, passengers int) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1, metric.WithAttributes(attribute.Int("booking.passengers", passengers)))
}

func (m *BookingMetrics) Failed(ctx context.Context, op, reason string) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("booking.op", op),
		attribute.String("error.type", reason),
	))
}

func (m *BookingMetrics) Cancelled(ctx context.Context) {
	if m == nil {
		return
	}
	m.cancelled.Add(ctx, 1)
}

func (m *BookingMetrics) Retried(ctx context.Context, op, reason string) {
	if m == nil {
		return
	}
	m.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("booking.op", op),
		attribute.String("error.type", reason),
	))
}

func (m *BookingMetrics) ObserveTx(ctx context.Context, op string, started time.Time) {
	if m == nil {
		return
	}
	m.txDuration.Record(ctx, time.Since(started).Seconds(), metric.WithAttributes(attribute.String("booking.op", op)))
}
