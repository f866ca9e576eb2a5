package shared

import (
	"context"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/domain/booking"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

// Tx hands out repositories bound to one transaction.
type Tx interface {
	Bookings() BookingRepository
	Availability() AvailabilityRepository
	Idempotency() IdempotencyRepository
	Reads() CommandReads
}

type CommandReads interface {
	ProviderServiceByID(ctx context.Context, id uuid.UUID) (*ProviderServiceSnapshot, error)
	ActiveBookingsByProvider(ctx context.Context, providerID uuid.UUID) ([]*booking.Booking, error)
}

type BookingRepository interface {
	// LockProvider serializes booking writes for one provider until the transaction ends.
	LockProvider(ctx context.Context, providerID uuid.UUID) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	// ListActiveByProvider returns pending, confirmed and in-progress bookings, skipping exclude.
	ListActiveByProvider(ctx context.Context, providerID, exclude uuid.UUID) ([]*booking.Booking, error)
	Create(ctx context.Context, b *booking.Booking) error
	Update(ctx context.Context, b *booking.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AvailabilityRepository interface {
	LockProvider(ctx context.Context, providerID uuid.UUID) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*availability.Availability, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*availability.Availability, error)
	Create(ctx context.Context, a *availability.Availability) error
	Update(ctx context.Context, a *availability.Availability) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type IdempotencyRepository interface {
	// TryInsert claims the key and reports whether this call created it.
	TryInsert(ctx context.Context, rec IdempotencyRecord) (bool, error)
	Get(ctx context.Context, key string, userID uuid.UUID) (*IdempotencyRecord, error)
	// ClaimExpired takes over an expired key for a new request.
	ClaimExpired(ctx context.Context, rec IdempotencyRecord) (bool, error)
	UpdateStatusCompleted(ctx context.Context, key string, userID, bookingID uuid.UUID) error
}
