package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/kafka"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/Domenick1991/bookingengine/internal/repository"
	"github.com/Domenick1991/bookingengine/internal/telemetry"
	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultMaxPassengers = 9
	defaultTxRetries     = 3
	retryBackoff         = 20 * time.Millisecond
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, actor domain.Actor, pnr string) error
	GetBooking(ctx context.Context, actor domain.Actor, pnr string) (*domain.Booking, error)
	ListBookings(ctx context.Context, actor domain.Actor, ownerID int64) ([]domain.Booking, error)
	ListTickets(ctx context.Context, actor domain.Actor) ([]domain.TicketRecord, error)
	UserReport(ctx context.Context, actor domain.Actor, userID int64) (*domain.UserReport, error)
	CompleteDepartedTickets(ctx context.Context, grace time.Duration) (int64, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	store              repository.Store
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string

	refs          ReferenceGenerator
	inventory     InventoryResolver
	conflicts     ConflictDetector
	metrics       *telemetry.BookingMetrics
	maxPassengers int
	txRetries     int
	now           func() time.Time
}

type PassengerInput struct {
	Name   string        `json:"name"`
	Age    int           `json:"age"`
	Gender domain.Gender `json:"gender"`
	SeatNo string        `json:"seat_no"`
}

type PaymentInput struct {
	Mode           domain.PaymentMode `json:"mode"`
	TransactionRef string             `json:"transaction_ref"`
}

type CreateBookingInput struct {
	FlightID   int64            `json:"flight_id"`
	ClassID    int64            `json:"class_id"`
	Passengers []PassengerInput `json:"passengers"`
	Payment    PaymentInput     `json:"payment"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithReferenceGenerator(refs ReferenceGenerator) BookingServiceOption {
	return func(s *BookingService) {
		s.refs = refs
	}
}

func WithMetrics(m *telemetry.BookingMetrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func WithMaxPassengers(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxPassengers = n
		}
	}
}

// WithTxRetries sets how many times a unit of work aborted by a serialization
// failure is repeated. Zero disables retrying.
func WithTxRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n >= 0 {
			s.txRetries = n
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	store repository.Store,
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		store:         store,
		bookings:      bookings,
		flights:       flights,
		producer:      producer,
		bookingTopic:  bookingTopic,
		refs:          RandomReferences{},
		maxPassengers: defaultMaxPassengers,
		txRetries:     defaultTxRetries,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) validate(input CreateBookingInput) ([]string, error) {
	if input.FlightID <= 0 {
		return nil, domain.NewValidationError("flight_id", "must be positive")
	}
	if input.ClassID <= 0 {
		return nil, domain.NewValidationError("class_id", "must be positive")
	}
	if len(input.Passengers) == 0 {
		return nil, domain.NewValidationError("passengers", "at least one passenger is required")
	}
	if len(input.Passengers) > s.maxPassengers {
		return nil, domain.NewValidationError("passengers", fmt.Sprintf("at most %d passengers per booking", s.maxPassengers))
	}
	for i, p := range input.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].name", i), "name is required")
		}
		if p.Age <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].age", i), "age must be positive")
		}
		if !p.Gender.Valid() {
			return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].gender", i), fmt.Sprintf("unknown gender %q", p.Gender))
		}
	}
	if strings.TrimSpace(string(input.Payment.Mode)) == "" {
		return nil, domain.NewValidationError("payment.mode", "payment mode is required")
	}
	if !input.Payment.Mode.Valid() {
		return nil, domain.NewValidationError("payment.mode", fmt.Sprintf("unsupported payment mode %q", input.Payment.Mode))
	}
	if strings.TrimSpace(input.Payment.TransactionRef) == "" {
		return nil, domain.NewValidationError("payment.transaction_ref", "external transaction reference is required")
	}

	seats := make([]string, len(input.Passengers))
	for i, p := range input.Passengers {
		seats[i] = p.SeatNo
	}
	return NormalizeSeats(seats)
}

// CreateBooking books every passenger of input on one flight class in a single
// transaction. Either the booking, its payment, all passengers and all tickets
// are stored, or nothing is.
func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (_ *domain.Booking, err error) {
	ctx, span := telemetry.StartSpan(ctx, "booking.create",
		attribute.Int64("booking.flight_id", input.FlightID),
		attribute.Int64("booking.class_id", input.ClassID),
		attribute.Int("booking.passengers", len(input.Passengers)),
	)
	defer func() { telemetry.EndSpan(span, err) }()
	log := logger.WithContext(ctx)

	seats, err := s.validate(input)
	if err != nil {
		s.metrics.Failed(ctx, "create", reason(err))
		return nil, err
	}

	var created *domain.Booking
	err = s.withRetry(ctx, "create", func(tx repository.Tx) error {
		b, err := s.createInTx(ctx, tx, actor, input, seats)
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		s.metrics.Failed(ctx, "create", reason(err))
		log.Info("booking rejected",
			zap.Int64("user_id", actor.UserID),
			zap.Int64("flight_id", input.FlightID),
			zap.Int64("class_id", input.ClassID),
			zap.Error(err))
		return nil, err
	}

	s.metrics.Created(ctx, len(created.Passengers))
	log.Info("booking created",
		zap.String("pnr", created.PNR),
		zap.Int64("user_id", created.UserID),
		zap.Int("passengers", len(created.Passengers)),
		zap.Int64("total_amount_cents", created.TotalAmountCents))

	event := kafka.BookingEvent{
		Type:             kafka.EventBookingCreated,
		PNR:              created.PNR,
		UserID:           created.UserID,
		FlightID:         input.FlightID,
		ClassID:          input.ClassID,
		Seats:            seats,
		Status:           string(created.Status),
		TotalAmountCents: created.TotalAmountCents,
		OccurredAt:       s.now(),
	}
	if err := s.publish(ctx, event); err != nil {
		log.Warn("failed to publish booking event", zap.String("type", event.Type), zap.String("pnr", created.PNR), zap.Error(err))
	}
	return created, nil
}

func (s *BookingService) createInTx(ctx context.Context, tx repository.Tx, actor domain.Actor, input CreateBookingInput, seats []string) (*domain.Booking, error) {
	flight, err := tx.GetFlight(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	class, err := tx.LockClass(ctx, input.FlightID, input.ClassID)
	if err != nil {
		return nil, err
	}
	if !flight.DepartureTime.After(s.now()) {
		return nil, domain.NewValidationError("flight_id", "flight has already departed")
	}

	if err := s.inventory.Require(ctx, tx, class, len(seats)); err != nil {
		return nil, err
	}
	if err := s.conflicts.EnsureFree(ctx, tx, flight.ID, seats); err != nil {
		return nil, err
	}

	total := int64(len(seats)) * class.FareCents
	b := &domain.Booking{
		UserID:           actor.UserID,
		PNR:              s.refs.PNR(),
		TotalAmountCents: total,
		Status:           domain.BookingStatusConfirmed,
	}
	if err := tx.InsertBooking(ctx, b); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		BookingID:     b.ID,
		TransactionID: s.refs.TransactionID(),
		ExternalRef:   strings.TrimSpace(input.Payment.TransactionRef),
		PaymentMode:   input.Payment.Mode,
		AmountCents:   total,
		Status:        domain.PaymentStatusSuccess,
	}
	if err := tx.InsertPayment(ctx, payment); err != nil {
		return nil, err
	}
	b.Payment = payment

	b.Passengers = make([]domain.Passenger, 0, len(seats))
	for i, in := range input.Passengers {
		p := domain.Passenger{
			BookingID: b.ID,
			Name:      strings.TrimSpace(in.Name),
			Age:       in.Age,
			Gender:    in.Gender,
		}
		if err := tx.InsertPassenger(ctx, &p); err != nil {
			return nil, err
		}
		t := &domain.Ticket{
			PassengerID: p.ID,
			FlightID:    flight.ID,
			ClassID:     class.ID,
			SeatNo:      seats[i],
			TravelDate:  flight.DepartureTime,
			Status:      domain.TicketStatusBooked,
			Flight:      flight,
			Class:       class,
		}
		if err := tx.InsertTicket(ctx, t); err != nil {
			return nil, err
		}
		p.Ticket = t
		b.Passengers = append(b.Passengers, p)
	}
	return b, nil
}

// withRetry runs fn in a fresh transaction per attempt. A reference collision
// is retried once; serialization failures are retried up to txRetries times
// with jittered exponential backoff and then reported as ErrContention.
func (s *BookingService) withRetry(ctx context.Context, op string, fn func(tx repository.Tx) error) error {
	collisionRetried := false
	serializationRetries := 0

	attempt := func() (struct{}, error) {
		started := time.Now()
		err := s.store.InTx(ctx, fn)
		s.metrics.ObserveTx(ctx, op, started)

		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, domain.ErrReferenceCollision) && !collisionRetried:
			collisionRetried = true
			s.metrics.Retried(ctx, op, "reference_collision")
			logger.WithContext(ctx).Warn("reference collision, retrying with new references", zap.String("op", op), zap.Error(err))
			return struct{}{}, err
		case errors.Is(err, repository.ErrSerializationFailure):
			if serializationRetries >= s.txRetries {
				return struct{}{}, backoff.Permanent(fmt.Errorf("%w: gave up after %d attempts: %v", domain.ErrContention, serializationRetries+1, err))
			}
			serializationRetries++
			s.metrics.Retried(ctx, op, "serialization_failure")
			logger.WithContext(ctx).Debug("serialization failure, retrying",
				zap.String("op", op), zap.Int("attempt", serializationRetries))
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, attempt, backoff.WithBackOff(newRetryBackOff()))
	return err
}

func newRetryBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryBackoff
	b.MaxInterval = 20 * retryBackoff
	return b
}

func (s *BookingService) publish(ctx context.Context, event kafka.BookingEvent) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, event.PNR, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, event.PNR, event)
	}
	return nil
}

// reason is the low-cardinality error label used in metrics.
func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCapacity):
		return "capacity"
	case errors.Is(err, domain.ErrSeatConflict):
		return "seat_conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, domain.ErrContention):
		return "contention"
	case errors.Is(err, domain.ErrReferenceCollision):
		return "reference_collision"
	}
	return "internal"
}

var _ BookingUseCase = (*BookingService)(nil)
