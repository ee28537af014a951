package booking

import (
	"context"

	"github.com/Domenick1991/bookingengine/internal/domain"
)

// SeatCounter counts Booked tickets of a class. Both a write transaction and the
// read-only flight repository satisfy it, so the count is always taken from
// ticket rows as seen by the caller's transaction.
type SeatCounter interface {
	CountBookedTickets(ctx context.Context, classID int64) (int, error)
}

// InventoryResolver derives remaining capacity of a class. There is no stored
// availability counter.
type InventoryResolver struct{}

func (InventoryResolver) Available(ctx context.Context, q SeatCounter, class *domain.Class) (int, error) {
	booked, err := q.CountBookedTickets(ctx, class.ID)
	if err != nil {
		return 0, err
	}
	available := class.TotalSeats - booked
	if available < 0 {
		available = 0
	}
	return available, nil
}

// Require fails with a CapacityError when fewer than requested seats remain.
func (r InventoryResolver) Require(ctx context.Context, q SeatCounter, class *domain.Class, requested int) error {
	available, err := r.Available(ctx, q, class)
	if err != nil {
		return err
	}
	if requested > available {
		return &domain.CapacityError{Requested: requested, Available: available}
	}
	return nil
}
