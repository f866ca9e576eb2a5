package commands

import (
	"context"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/domain/user"
	"service-marketplace/internal/pkg/clock"
	"service-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
}

func (in AvailabilityInput) parse() (availability.DayOfWeek, availability.TimeOfDay, availability.TimeOfDay, error) {
	day, err := availability.NewDayOfWeek(in.DayOfWeek)
	if err != nil {
		return 0, availability.TimeOfDay{}, availability.TimeOfDay{}, err
	}
	start, err := availability.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return 0, availability.TimeOfDay{}, availability.TimeOfDay{}, err
	}
	end, err := availability.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return 0, availability.TimeOfDay{}, availability.TimeOfDay{}, err
	}
	return day, start, end, nil
}

// AvailabilityCacheInvalidator drops cached slot lists after a committed write.
type AvailabilityCacheInvalidator interface {
	Invalidate(ctx context.Context, providerID uuid.UUID) error
}

type AvailabilityCommands interface {
	Create(ctx context.Context, actor user.Actor, in AvailabilityInput) (*availability.Availability, error)
	Update(ctx context.Context, actor user.Actor, id uuid.UUID, in AvailabilityInput) (*availability.Availability, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error
}

type availabilityCommandsImpl struct {
	uow    shared.UnitOfWork
	cache  AvailabilityCacheInvalidator
	clock  clock.Clock
	logger *zap.Logger
}

func NewAvailabilityCommands(uow shared.UnitOfWork, cache AvailabilityCacheInvalidator, clk clock.Clock, logger *zap.Logger) AvailabilityCommands {
	return &availabilityCommandsImpl{uow: uow, cache: cache, clock: clk, logger: logger}
}

func (uc *availabilityCommandsImpl) Create(ctx context.Context, actor user.Actor, in AvailabilityInput) (*availability.Availability, error) {
	if !actor.IsProvider() {
		return nil, ErrProviderRoleRequired
	}
	day, start, end, err := in.parse()
	if err != nil {
		return nil, err
	}

	var created *availability.Availability
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		slot, err := availability.NewAvailability(actor.ID, day, start, end, uc.clock.Now())
		if err != nil {
			return err
		}

		repo := tx.Availability()
		if err := repo.LockProvider(ctx, actor.ID); err != nil {
			return err
		}
		existing, err := repo.ListByProvider(ctx, actor.ID)
		if err != nil {
			return err
		}
		if err := availability.CheckOverlap(slot, existing); err != nil {
			return err
		}
		if err := repo.Create(ctx, slot); err != nil {
			return err
		}
		created = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, actor.ID)
	return created, nil
}

func (uc *availabilityCommandsImpl) Update(ctx context.Context, actor user.Actor, id uuid.UUID, in AvailabilityInput) (*availability.Availability, error) {
	if !actor.IsProvider() {
		return nil, ErrProviderRoleRequired
	}
	day, start, end, err := in.parse()
	if err != nil {
		return nil, err
	}

	var updated *availability.Availability
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Availability()
		if err := repo.LockProvider(ctx, actor.ID); err != nil {
			return err
		}
		slot, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, ErrSlotNotFound)
		}
		if err := slot.CheckOwner(actor.ID); err != nil {
			return err
		}
		if err := slot.Reschedule(day, start, end, uc.clock.Now()); err != nil {
			return err
		}

		existing, err := repo.ListByProvider(ctx, actor.ID)
		if err != nil {
			return err
		}
		if err := availability.CheckOverlap(slot, existing); err != nil {
			return err
		}
		if err := repo.Update(ctx, slot); err != nil {
			return notFoundAs(err, ErrSlotNotFound)
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, actor.ID)
	return updated, nil
}

func (uc *availabilityCommandsImpl) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	if !actor.IsProvider() {
		return ErrProviderRoleRequired
	}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Availability()
		slot, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, ErrSlotNotFound)
		}
		if err := slot.CheckOwner(actor.ID); err != nil {
			return err
		}
		return notFoundAs(repo.Delete(ctx, id), ErrSlotNotFound)
	})
	if err != nil {
		return err
	}

	uc.invalidate(ctx, actor.ID)
	return nil
}

func (uc *availabilityCommandsImpl) invalidate(ctx context.Context, providerID uuid.UUID) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, providerID); err != nil {
		uc.logger.Warn("failed to invalidate availability cache",
			zap.Stringer("provider_id", providerID),
			zap.Error(err))
	}
}
