package booking

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Domenick1991/bookingengine/internal/domain"
)

var seatPattern = regexp.MustCompile(`^[A-Z][0-9]{1,2}$`)

// NormalizeSeat upper-cases and validates a single seat number.
func NormalizeSeat(seat string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(seat))
	return s, seatPattern.MatchString(s)
}

// NormalizeSeats validates the requested seats and rejects duplicate claims
// within the request. It never touches storage.
func NormalizeSeats(seats []string) ([]string, error) {
	out := make([]string, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for i, raw := range seats {
		if strings.TrimSpace(raw) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].seat_no", i), "seat number is required")
		}
		s, ok := NormalizeSeat(raw)
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].seat_no", i), fmt.Sprintf("seat %q must be a letter followed by 1-2 digits", raw))
		}
		out[i] = s
	}
	for _, s := range out {
		if _, dup := seen[s]; dup {
			return nil, &domain.SeatConflictError{Seat: s}
		}
		seen[s] = struct{}{}
	}
	return out, nil
}

// SeatFinder returns which of the given seats already hold a Booked ticket.
type SeatFinder interface {
	FindBookedSeats(ctx context.Context, flightID int64, seats []string) ([]string, error)
}

// ConflictDetector checks normalized seats against Booked tickets on a flight.
type ConflictDetector struct{}

// EnsureFree reports the first taken seat in request order.
func (ConflictDetector) EnsureFree(ctx context.Context, q SeatFinder, flightID int64, seats []string) error {
	taken, err := q.FindBookedSeats(ctx, flightID, seats)
	if err != nil {
		return err
	}
	if len(taken) == 0 {
		return nil
	}
	takenSet := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		takenSet[strings.ToUpper(s)] = struct{}{}
	}
	for _, s := range seats {
		if _, ok := takenSet[s]; ok {
			return &domain.SeatConflictError{Seat: s}
		}
	}
	return &domain.SeatConflictError{Seat: taken[0]}
}
