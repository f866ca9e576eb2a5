package commands

import (
	"fmt"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/pkg/errs"
)

var (
	ErrBookingNotFound         = fmt.Errorf("%w: booking not found", errs.ErrNotFound)
	ErrProviderServiceNotFound = fmt.Errorf("%w: provider service not found", errs.ErrNotFound)
	ErrSlotNotFound            = fmt.Errorf("%w: availability slot not found", errs.ErrNotFound)

	ErrIdempotencyKeyReused  = fmt.Errorf("%w: idempotency key reused with a different request", errs.ErrConflict)
	ErrIdempotencyInProgress = fmt.Errorf("%w: a request with this idempotency key is still processing", errs.ErrConflict)

	ErrProviderRoleRequired = availability.ErrNotProvider
	ErrNothingToUpdate      = fmt.Errorf("%w: no changes requested", errs.ErrValidation)
)

// notFoundAs replaces a repository not-found failure with a domain specific one.
func notFoundAs(err, target error) error {
	if errs.Is(err, errs.ErrNotFound) {
		return target
	}
	return err
}
