//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/domain/user"
	"service-marketplace/internal/pkg/clock"
	"service-marketplace/internal/pkg/errs"
	"service-marketplace/internal/usecase/commands"
	"service-marketplace/tests/common/builder"
	"service-marketplace/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingInvalidator struct {
	providers []uuid.UUID
	err       error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, providerID uuid.UUID) error {
	r.providers = append(r.providers, providerID)
	return r.err
}

func newAvailabilityCommands(t *testing.T) (commands.AvailabilityCommands, *memstore.Store, *recordingInvalidator) {
	t.Helper()
	clk := clock.NewMockClock(builder.DefaultNow)
	store := memstore.New(clk)
	inv := &recordingInvalidator{}
	return commands.NewAvailabilityCommands(store, inv, clk, zap.NewNop()), store, inv
}

func TestAvailabilityCommands_Create(t *testing.T) {
	ctx := context.Background()
	provider := user.NewActor(uuid.New(), user.RoleProvider)

	t.Run("creates and invalidates the cache", func(t *testing.T) {
		cmds, store, inv := newAvailabilityCommands(t)

		slot, err := cmds.Create(ctx, provider, commands.AvailabilityInput{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"})
		require.NoError(t, err)
		assert.Equal(t, provider.ID, slot.ProviderID())
		assert.Len(t, store.Slots(provider.ID), 1)
		assert.Equal(t, []uuid.UUID{provider.ID}, inv.providers)
	})

	t.Run("overlap with an existing slot", func(t *testing.T) {
		cmds, store, inv := newAvailabilityCommands(t)
		first, err := cmds.Create(ctx, provider, commands.AvailabilityInput{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"})
		require.NoError(t, err)

		_, err = cmds.Create(ctx, provider, commands.AvailabilityInput{DayOfWeek: 1, StartTime: "11:30", EndTime: "13:00"})
		oe, ok := availability.AsOverlap(err)
		require.True(t, ok)
		assert.Equal(t, first.ID(), oe.SlotID)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Len(t, store.Slots(provider.ID), 1)
		assert.Len(t, inv.providers, 1)

		_, err = cmds.Create(ctx, provider, commands.AvailabilityInput{DayOfWeek: 1, StartTime: "12:00", EndTime: "13:00"})
		assert.NoError(t, err)
	})

	t.Run("clients cannot publish slots", func(t *testing.T) {
		cmds, _, _ := newAvailabilityCommands(t)
		_, err := cmds.Create(ctx, user.NewActor(uuid.New(), user.RoleClient), commands.AvailabilityInput{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"})
		assert.ErrorIs(t, err, commands.ErrProviderRoleRequired)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("invalid input", func(t *testing.T) {
		cmds, _, _ := newAvailabilityCommands(t)
		for _, in := range []commands.AvailabilityInput{
			{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: 1, StartTime: "9", EndTime: "10:00"},
			{DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00"},
		} {
			_, err := cmds.Create(ctx, provider, in)
			assert.ErrorIs(t, err, errs.ErrValidation, in)
		}
	})

	t.Run("cache failure does not fail the write", func(t *testing.T) {
		clk := clock.NewMockClock(builder.DefaultNow)
		store := memstore.New(clk)
		core, logs := observer.New(zap.WarnLevel)
		cmds := commands.NewAvailabilityCommands(store, &recordingInvalidator{err: errors.New("redis down")}, clk, zap.New(core))

		_, err := cmds.Create(ctx, provider, commands.AvailabilityInput{DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00"})
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("failed to invalidate availability cache").Len())
	})
}

func TestAvailabilityCommands_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	provider := user.NewActor(uuid.New(), user.RoleProvider)
	other := user.NewActor(uuid.New(), user.RoleProvider)

	cmds, store, inv := newAvailabilityCommands(t)
	morning, err := cmds.Create(ctx, provider, commands.AvailabilityInput{DayOfWeek: 3, StartTime: "08:00", EndTime: "12:00"})
	require.NoError(t, err)
	_, err = cmds.Create(ctx, provider, commands.AvailabilityInput{DayOfWeek: 3, StartTime: "14:00", EndTime: "18:00"})
	require.NoError(t, err)

	t.Run("extending a slot over its own range", func(t *testing.T) {
		updated, err := cmds.Update(ctx, provider, morning.ID(), commands.AvailabilityInput{DayOfWeek: 3, StartTime: "07:00", EndTime: "13:00"})
		require.NoError(t, err)
		assert.Equal(t, "07:00", updated.Start().String())
	})

	t.Run("extending into the afternoon slot", func(t *testing.T) {
		_, err := cmds.Update(ctx, provider, morning.ID(), commands.AvailabilityInput{DayOfWeek: 3, StartTime: "07:00", EndTime: "15:00"})
		_, ok := availability.AsOverlap(err)
		assert.True(t, ok)
	})

	t.Run("only the owner may change a slot", func(t *testing.T) {
		_, err := cmds.Update(ctx, other, morning.ID(), commands.AvailabilityInput{DayOfWeek: 4, StartTime: "07:00", EndTime: "08:00"})
		assert.ErrorIs(t, err, errs.ErrForbidden)
		assert.ErrorIs(t, cmds.Delete(ctx, other, morning.ID()), errs.ErrForbidden)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, err := cmds.Update(ctx, provider, uuid.New(), commands.AvailabilityInput{DayOfWeek: 4, StartTime: "07:00", EndTime: "08:00"})
		assert.ErrorIs(t, err, commands.ErrSlotNotFound)
		assert.ErrorIs(t, cmds.Delete(ctx, provider, uuid.New()), errs.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, cmds.Delete(ctx, provider, morning.ID()))
		assert.Len(t, store.Slots(provider.ID), 1)
		assert.Len(t, inv.providers, 4)
	})
}
