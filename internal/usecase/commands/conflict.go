package commands

import (
	"context"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/pkg/errs"
	"service-marketplace/internal/usecase/shared"
)

// reserveSlot takes the provider lock and runs the conflict check for b against
// the provider's other active bookings. The lock is held until the transaction ends.
func reserveSlot(ctx context.Context, repo shared.BookingRepository, b *booking.Booking) error {
	if err := repo.LockProvider(ctx, b.ProviderID()); err != nil {
		return err
	}
	active, err := repo.ListActiveByProvider(ctx, b.ProviderID(), b.ID())
	if err != nil {
		return err
	}
	return booking.CheckConflict(b.Window(), active, b.ID())
}

// exclusionConflict converts a rejected insert or update into a ConflictError when
// the database exclusion constraint caught an overlap the lock did not.
func exclusionConflict(err error, b *booking.Booking) error {
	if _, ok := booking.AsConflict(err); ok {
		return err
	}
	if errs.Is(err, errs.ErrConflict) {
		return &booking.ConflictError{Start: b.Window().Start(), End: b.Window().End()}
	}
	return err
}

func isSlotConflict(err error) bool {
	_, ok := booking.AsConflict(err)
	return ok
}
