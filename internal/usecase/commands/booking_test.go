//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/pkg/clock"
	"service-marketplace/internal/pkg/errs"
	"service-marketplace/internal/pkg/metrics"
	"service-marketplace/internal/pkg/patch"
	"service-marketplace/internal/usecase/commands"
	"service-marketplace/internal/usecase/shared"
	"service-marketplace/tests/common/builder"
	"service-marketplace/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BookingCommandsTestSuite struct {
	suite.Suite
	clock    *clock.MockClock
	store    *memstore.Store
	registry *prometheus.Registry
	cmds     commands.BookingCommands

	clientID  uuid.UUID
	provider  *shared.ProviderServiceSnapshot
	slotStart time.Time
}

func (s *BookingCommandsTestSuite) SetupTest() {
	s.clock = clock.NewMockClock(builder.DefaultNow)
	s.store = memstore.New(s.clock)
	s.registry = prometheus.NewRegistry()
	services := &booking.Services{Clock: s.clock, Policy: booking.DefaultPolicy()}
	s.cmds = commands.NewBookingCommands(s.store, services, 24*time.Hour, metrics.New(s.registry))

	b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		b.Price = decimal.RequireFromString("120.455")
		b.Currency = ""
		b.DurationMinutes = 90
	})
	s.clientID = b.ClientID
	s.provider = b.BuildServiceSnapshot()
	s.store.AddService(s.provider)
	s.slotStart = builder.DefaultNow.Add(72 * time.Hour)
}

func TestBookingCommandsSuite(t *testing.T) {
	suite.Run(t, new(BookingCommandsTestSuite))
}

func (s *BookingCommandsTestSuite) input(mutate ...func(*commands.CreateBookingInput)) commands.CreateBookingInput {
	in := commands.CreateBookingInput{
		ClientID:          s.clientID,
		ProviderServiceID: s.provider.ID,
		ScheduledAt:       s.slotStart,
		Notes:             "gate code 1234",
	}
	for _, m := range mutate {
		m(&in)
	}
	return in
}

func (s *BookingCommandsTestSuite) create(mutate ...func(*commands.CreateBookingInput)) *booking.Booking {
	res, err := s.cmds.Create(context.Background(), s.input(mutate...))
	s.Require().NoError(err)
	return res.Booking
}

// existing stores a booking for the suite's provider directly.
func (s *BookingCommandsTestSuite) existing(start time.Time, minutes int, status booking.Status) *booking.Booking {
	b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		b.ClientID = uuid.New()
		b.ProviderID = s.provider.ProviderID
		b.ServiceID = s.provider.ID
		b.ScheduledAt = start
		b.DurationMinutes = minutes
		b.Status = status
	}).BuildDomain()
	s.store.AddBooking(b)
	return b
}

func (s *BookingCommandsTestSuite) counter(name string) float64 {
	mfs, err := s.registry.Gather()
	s.Require().NoError(err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

// ================================================================================
// Create
// ================================================================================

func (s *BookingCommandsTestSuite) TestCreate() {
	s.Run("success: persists a pending booking with a price snapshot", func() {
		res, err := s.cmds.Create(context.Background(), s.input())
		s.Require().NoError(err)
		s.False(res.Replayed)

		b := res.Booking
		s.Equal(booking.StatusPending, b.Status())
		s.Equal(s.provider.ProviderID, b.ProviderID())
		s.Equal(90, b.Window().DurationMinutes())
		s.Equal("120.46 USD", b.Price().String())

		s.Require().NotNil(res.Event)
		s.Equal(booking.EventCreated, res.Event.Type)
		s.Equal([]uuid.UUID{s.provider.ProviderID}, res.Event.Recipients)
		s.Equal(s.clientID, res.Event.ActorID)

		stored := s.store.Booking(b.ID())
		s.Require().NotNil(stored)
		s.Equal(booking.StatusPending, stored.Status())
		s.Equal(float64(1), s.counter("marketplace_bookings_created_total"))
	})

	s.Run("rejections follow the documented order", func() {
		inactive := *s.provider
		inactive.ID = uuid.New()
		inactive.Status = shared.ProviderServiceInactive
		s.store.AddService(&inactive)

		cases := []struct {
			name   string
			mutate func(*commands.CreateBookingInput)
			errIs  error
		}{
			{name: "unknown service", mutate: func(in *commands.CreateBookingInput) { in.ProviderServiceID = uuid.New() }, errIs: errs.ErrNotFound},
			{name: "inactive service wins over lead time", mutate: func(in *commands.CreateBookingInput) {
				in.ProviderServiceID = inactive.ID
				in.ScheduledAt = builder.DefaultNow
			}, errIs: errs.ErrUnavailable},
			{name: "provider booking own service", mutate: func(in *commands.CreateBookingInput) { in.ClientID = s.provider.ProviderID }, errIs: errs.ErrValidation},
			{name: "119 minutes ahead", mutate: func(in *commands.CreateBookingInput) { in.ScheduledAt = builder.DefaultNow.Add(119 * time.Minute) }, errIs: errs.ErrLeadTime},
			{name: "lead time wins over duration", mutate: func(in *commands.CreateBookingInput) {
				in.ScheduledAt = builder.DefaultNow.Add(time.Hour)
				in.DurationMinutes = patch.Ptr(5)
			}, errIs: errs.ErrLeadTime},
			{name: "duration too short", mutate: func(in *commands.CreateBookingInput) { in.DurationMinutes = patch.Ptr(14) }, errIs: errs.ErrDuration},
			{name: "duration too long", mutate: func(in *commands.CreateBookingInput) { in.DurationMinutes = patch.Ptr(481) }, errIs: errs.ErrDuration},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				before := len(s.store.Bookings())
				_, err := s.cmds.Create(context.Background(), s.input(tc.mutate))
				s.ErrorIs(err, tc.errIs)
				s.Len(s.store.Bookings(), before)
			})
		}
	})

	s.Run("lead time boundary", func() {
		for _, minutes := range []int{120, 121} {
			svc := *s.provider
			svc.ID = uuid.New()
			svc.ProviderID = uuid.New()
			s.store.AddService(&svc)

			_, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) {
				in.ProviderServiceID = svc.ID
				in.ScheduledAt = builder.DefaultNow.Add(time.Duration(minutes) * time.Minute)
			}))
			s.NoError(err, minutes)
		}
	})
}

func (s *BookingCommandsTestSuite) TestCreate_Conflicts() {
	blocking := s.existing(s.slotStart, 60, booking.StatusConfirmed)

	s.Run("overlap is rejected with the blocking booking", func() {
		_, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) {
			in.ScheduledAt = s.slotStart.Add(30 * time.Minute)
		}))
		s.Require().ErrorIs(err, errs.ErrConflict)

		ce, ok := booking.AsConflict(err)
		s.Require().True(ok)
		s.Equal(blocking.ID(), ce.BookingID)
		s.True(ce.Start.Equal(s.slotStart))
		s.True(ce.End.Equal(s.slotStart.Add(time.Hour)))
		s.Equal(float64(1), s.counter("marketplace_booking_conflicts_total"))
	})

	s.Run("back to back is allowed", func() {
		b := s.create(func(in *commands.CreateBookingInput) {
			in.ScheduledAt = s.slotStart.Add(time.Hour)
			in.DurationMinutes = patch.Ptr(60)
		})
		s.True(b.ScheduledAt().Equal(s.slotStart.Add(time.Hour)))
	})

	s.Run("terminal bookings free the slot", func() {
		cancelled := s.existing(s.slotStart.Add(24*time.Hour), 60, booking.StatusCancelled)
		b := s.create(func(in *commands.CreateBookingInput) { in.ScheduledAt = cancelled.ScheduledAt() })
		s.NotEqual(cancelled.ID(), b.ID())
	})

	s.Run("exclusion constraint violation surfaces as a conflict", func() {
		s.store.CreateErr = fmt.Errorf("%w: bookings_no_overlap", errs.ErrConflict)
		start := s.slotStart.Add(48 * time.Hour)
		_, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) { in.ScheduledAt = start }))

		ce, ok := booking.AsConflict(err)
		s.Require().True(ok)
		s.Equal(uuid.Nil, ce.BookingID)
		s.True(ce.Start.Equal(start))
	})
}

func (s *BookingCommandsTestSuite) TestCreate_Concurrent() {
	const attempts = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.cmds.Create(context.Background(), commands.CreateBookingInput{
				ClientID:          uuid.New(),
				ProviderServiceID: s.provider.ID,
				ScheduledAt:       s.slotStart,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errs.Is(err, errs.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
	s.Equal(attempts-1, conflicts)
	s.Len(s.store.Bookings(), 1)
}

func (s *BookingCommandsTestSuite) TestCreate_Idempotency() {
	key := "c0ffee-1"

	first, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) { in.IdempotencyKey = key }))
	s.Require().NoError(err)

	s.Run("replay returns the stored booking without an event", func() {
		again, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) { in.IdempotencyKey = key }))
		s.Require().NoError(err)
		s.True(again.Replayed)
		s.Nil(again.Event)
		s.Equal(first.Booking.ID(), again.Booking.ID())
		s.Len(s.store.Bookings(), 1)
		s.Equal(float64(1), s.counter("marketplace_bookings_created_total"))

		rec, ok := s.store.Idempotency(key, s.clientID)
		s.Require().True(ok)
		s.Equal(shared.IdempotencyCompleted, rec.Status)
		s.Equal(first.Booking.ID(), *rec.BookingID)
	})

	s.Run("same key with a different body is refused", func() {
		_, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) {
			in.IdempotencyKey = key
			in.Notes = "changed"
		}))
		s.ErrorIs(err, commands.ErrIdempotencyKeyReused)
		s.ErrorIs(err, errs.ErrConflict)
	})

	s.Run("keys are scoped per client", func() {
		other, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) {
			in.ClientID = uuid.New()
			in.IdempotencyKey = key
			in.ScheduledAt = s.slotStart.Add(24 * time.Hour)
		}))
		s.Require().NoError(err)
		s.False(other.Replayed)
	})

	s.Run("a failed request does not burn the key", func() {
		failing := "c0ffee-2"
		_, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) {
			in.IdempotencyKey = failing
			in.ScheduledAt = builder.DefaultNow.Add(time.Hour)
		}))
		s.Require().ErrorIs(err, errs.ErrLeadTime)
		_, ok := s.store.Idempotency(failing, s.clientID)
		s.False(ok)
	})

	s.Run("expired keys are reclaimed", func() {
		s.clock.Add(25 * time.Hour)
		res, err := s.cmds.Create(context.Background(), s.input(func(in *commands.CreateBookingInput) {
			in.IdempotencyKey = key
			in.Notes = "a new request"
			in.ScheduledAt = s.slotStart.Add(72 * time.Hour)
		}))
		s.Require().NoError(err)
		s.False(res.Replayed)
		s.NotEqual(first.Booking.ID(), res.Booking.ID())
	})
}

// ================================================================================
// Update
// ================================================================================

func (s *BookingCommandsTestSuite) TestChangeStatus() {
	s.Run("provider confirms", func() {
		b := s.create()
		res, err := s.cmds.ChangeStatus(context.Background(), s.provider.ProviderID, b.ID(), booking.StatusConfirmed, nil)
		s.Require().NoError(err)
		s.Equal(booking.StatusConfirmed, res.Booking.Status())
		s.Equal(booking.EventConfirmed, res.Event.Type)
		s.Equal(booking.StatusPending, res.Event.PreviousStatus)
		s.Equal([]uuid.UUID{s.clientID}, res.Event.Recipients)
		s.Equal(float64(1), s.counter("marketplace_booking_transitions_total"))
	})

	s.Run("client cannot confirm", func() {
		b := s.create(func(in *commands.CreateBookingInput) { in.ScheduledAt = s.slotStart.Add(24 * time.Hour) })
		_, err := s.cmds.ChangeStatus(context.Background(), s.clientID, b.ID(), booking.StatusConfirmed, nil)
		s.ErrorIs(err, errs.ErrForbidden)
		s.Equal(booking.StatusPending, s.store.Booking(b.ID()).Status())
	})

	s.Run("transition outside the table", func() {
		b := s.existing(s.slotStart.Add(48*time.Hour), 60, booking.StatusPending)
		_, err := s.cmds.ChangeStatus(context.Background(), s.provider.ProviderID, b.ID(), booking.StatusCompleted, nil)
		s.ErrorIs(err, errs.ErrInvalidTransition)
	})

	s.Run("strangers are forbidden", func() {
		b := s.existing(s.slotStart.Add(96*time.Hour), 60, booking.StatusPending)
		_, err := s.cmds.ChangeStatus(context.Background(), uuid.New(), b.ID(), booking.StatusConfirmed, nil)
		s.ErrorIs(err, errs.ErrForbidden)
	})

	s.Run("unknown booking", func() {
		_, err := s.cmds.ChangeStatus(context.Background(), s.clientID, uuid.New(), booking.StatusCancelled, nil)
		s.ErrorIs(err, commands.ErrBookingNotFound)
		s.ErrorIs(err, errs.ErrNotFound)
	})

	s.Run("reject stores the reason", func() {
		b := s.existing(s.slotStart.Add(120*time.Hour), 60, booking.StatusPending)
		res, err := s.cmds.ChangeStatus(context.Background(), s.provider.ProviderID, b.ID(), booking.StatusRejected, patch.Ptr("  fully booked "))
		s.Require().NoError(err)
		s.Equal("fully booked", *s.store.Booking(b.ID()).RejectionReason())
		s.Equal(booking.EventRejected, res.Event.Type)
	})
}

func (s *BookingCommandsTestSuite) TestCancel() {
	s.Run("client cancels with enough notice", func() {
		b := s.existing(builder.DefaultNow.Add(24*time.Hour+time.Minute), 60, booking.StatusConfirmed)
		res, err := s.cmds.Cancel(context.Background(), b.ClientID(), b.ID(), patch.Ptr("travel"))
		s.Require().NoError(err)
		s.Equal(booking.EventCancelled, res.Event.Type)
		s.Equal([]uuid.UUID{s.provider.ProviderID}, res.Event.Recipients)
		s.Equal("travel", *s.store.Booking(b.ID()).CancellationReason())
	})

	s.Run("client at exactly 24h is refused on every entry point", func() {
		b := s.existing(builder.DefaultNow.Add(24*time.Hour+3*time.Hour), 60, booking.StatusConfirmed)
		s.clock.Set(builder.DefaultNow.Add(3 * time.Hour))
		defer s.clock.Set(builder.DefaultNow)

		_, err := s.cmds.Cancel(context.Background(), b.ClientID(), b.ID(), nil)
		s.ErrorIs(err, booking.ErrCancellationWindowClosed)

		_, err = s.cmds.Update(context.Background(), commands.UpdateBookingInput{
			ActorID:   b.ClientID(),
			BookingID: b.ID(),
			Status:    patch.Ptr(booking.StatusCancelled),
		})
		s.ErrorIs(err, booking.ErrCancellationWindowClosed)
		s.Equal(booking.StatusConfirmed, s.store.Booking(b.ID()).Status())
	})

	s.Run("provider may cancel late", func() {
		b := s.existing(builder.DefaultNow.Add(3*time.Hour), 60, booking.StatusConfirmed)
		res, err := s.cmds.Cancel(context.Background(), s.provider.ProviderID, b.ID(), nil)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{b.ClientID()}, res.Event.Recipients)
	})
}

func (s *BookingCommandsTestSuite) TestReschedule() {
	s.Run("moving onto its own old slot is not a conflict", func() {
		b := s.create()
		newStart := s.slotStart.Add(30 * time.Minute)
		res, err := s.cmds.Reschedule(context.Background(), s.clientID, b.ID(), newStart, nil)
		s.Require().NoError(err)
		s.True(res.Booking.ScheduledAt().Equal(newStart))
		s.Equal(90, res.Booking.Window().DurationMinutes())
		s.Equal(booking.EventUpdated, res.Event.Type)
		s.True(s.store.Booking(b.ID()).ScheduledAt().Equal(newStart))
	})

	s.Run("conflict with another booking rolls back", func() {
		other := s.existing(s.slotStart.Add(48*time.Hour), 60, booking.StatusPending)
		b := s.create(func(in *commands.CreateBookingInput) { in.ScheduledAt = s.slotStart.Add(50 * time.Hour) })

		_, err := s.cmds.Reschedule(context.Background(), s.clientID, b.ID(), other.ScheduledAt(), patch.Ptr(30))
		ce, ok := booking.AsConflict(err)
		s.Require().True(ok)
		s.Equal(other.ID(), ce.BookingID)
		s.True(s.store.Booking(b.ID()).ScheduledAt().Equal(s.slotStart.Add(50 * time.Hour)))
	})

	s.Run("twelve hour notice", func() {
		b := s.existing(builder.DefaultNow.Add(12*time.Hour), 60, booking.StatusPending)
		_, err := s.cmds.Reschedule(context.Background(), b.ClientID(), b.ID(), builder.DefaultNow.Add(200*time.Hour), nil)
		s.ErrorIs(err, booking.ErrRescheduleWindowClosed)
	})

	s.Run("new time must respect lead time and duration", func() {
		b := s.existing(builder.DefaultNow.Add(300*time.Hour), 60, booking.StatusConfirmed)
		_, err := s.cmds.Reschedule(context.Background(), b.ClientID(), b.ID(), builder.DefaultNow.Add(time.Hour), nil)
		s.ErrorIs(err, errs.ErrLeadTime)
		_, err = s.cmds.Reschedule(context.Background(), b.ClientID(), b.ID(), builder.DefaultNow.Add(301*time.Hour), patch.Ptr(500))
		s.ErrorIs(err, errs.ErrDuration)
	})

	s.Run("provider cannot reschedule", func() {
		b := s.existing(builder.DefaultNow.Add(400*time.Hour), 60, booking.StatusConfirmed)
		_, err := s.cmds.Reschedule(context.Background(), s.provider.ProviderID, b.ID(), builder.DefaultNow.Add(410*time.Hour), nil)
		s.ErrorIs(err, booking.ErrRescheduleNotAllowed)
	})
}

func (s *BookingCommandsTestSuite) TestUpdate() {
	s.Run("empty update is a validation error", func() {
		_, err := s.cmds.Update(context.Background(), commands.UpdateBookingInput{ActorID: s.clientID, BookingID: uuid.New()})
		s.ErrorIs(err, commands.ErrNothingToUpdate)
		s.ErrorIs(err, errs.ErrValidation)
	})

	s.Run("notes edit emits booking_updated", func() {
		b := s.create()
		res, err := s.cmds.Update(context.Background(), commands.UpdateBookingInput{
			ActorID:   s.clientID,
			BookingID: b.ID(),
			Notes:     patch.Ptr("side door"),
		})
		s.Require().NoError(err)
		s.Equal(booking.EventUpdated, res.Event.Type)
		s.Equal(booking.StatusPending, res.Event.PreviousStatus)
		s.Equal("side door", s.store.Booking(b.ID()).Notes().String())
	})

	s.Run("location edit alone is silent", func() {
		b := s.existing(s.slotStart.Add(24*time.Hour), 60, booking.StatusPending)
		res, err := s.cmds.Update(context.Background(), commands.UpdateBookingInput{
			ActorID:   b.ClientID(),
			BookingID: b.ID(),
			Location:  &booking.Location{City: "Lisbon"},
		})
		s.Require().NoError(err)
		s.Nil(res.Event)
		s.Equal("Lisbon", s.store.Booking(b.ID()).Location().City)
	})

	s.Run("provider notes are provider only", func() {
		b := s.existing(s.slotStart.Add(48*time.Hour), 60, booking.StatusPending)
		_, err := s.cmds.Update(context.Background(), commands.UpdateBookingInput{
			ActorID:       b.ClientID(),
			BookingID:     b.ID(),
			ProviderNotes: patch.Ptr("bring ladder"),
		})
		s.ErrorIs(err, booking.ErrProviderNotesNotAllowed)
	})

	s.Run("status event wins over notes and both are saved", func() {
		b := s.existing(s.slotStart.Add(72*time.Hour), 60, booking.StatusPending)
		res, err := s.cmds.Update(context.Background(), commands.UpdateBookingInput{
			ActorID:       s.provider.ProviderID,
			BookingID:     b.ID(),
			Status:        patch.Ptr(booking.StatusConfirmed),
			Notes:         patch.Ptr("confirmed by phone"),
			ProviderNotes: patch.Ptr("bring ladder"),
		})
		s.Require().NoError(err)
		s.Equal(booking.EventConfirmed, res.Event.Type)

		stored := s.store.Booking(b.ID())
		s.Equal(booking.StatusConfirmed, stored.Status())
		s.Equal("confirmed by phone", stored.Notes().String())
		s.Equal("bring ladder", stored.ProviderNotes().String())
	})

	s.Run("a failing step rolls back earlier steps", func() {
		b := s.existing(s.slotStart.Add(96*time.Hour), 60, booking.StatusPending)
		_, err := s.cmds.Update(context.Background(), commands.UpdateBookingInput{
			ActorID:     s.provider.ProviderID,
			BookingID:   b.ID(),
			Status:      patch.Ptr(booking.StatusConfirmed),
			ScheduledAt: patch.Ptr(s.slotStart.Add(100 * time.Hour)),
			Notes:       patch.Ptr("moved"),
		})
		s.ErrorIs(err, booking.ErrRescheduleNotAllowed)

		stored := s.store.Booking(b.ID())
		s.True(stored.ScheduledAt().Equal(b.ScheduledAt()))
		s.Equal(b.Notes().String(), stored.Notes().String())
		s.Equal(booking.StatusPending, stored.Status())
	})

	s.Run("client cancel is gated on the committed start even when moved in the same update", func() {
		b := s.existing(builder.DefaultNow.Add(13*time.Hour), 60, booking.StatusConfirmed)

		_, err := s.cmds.Cancel(context.Background(), b.ClientID(), b.ID(), nil)
		s.ErrorIs(err, booking.ErrCancellationWindowClosed)

		_, err = s.cmds.Update(context.Background(), commands.UpdateBookingInput{
			ActorID:     b.ClientID(),
			BookingID:   b.ID(),
			ScheduledAt: patch.Ptr(builder.DefaultNow.Add(48 * time.Hour)),
			Status:      patch.Ptr(booking.StatusCancelled),
		})
		s.ErrorIs(err, booking.ErrCancellationWindowClosed)

		stored := s.store.Booking(b.ID())
		s.Equal(booking.StatusConfirmed, stored.Status())
		s.True(stored.ScheduledAt().Equal(b.ScheduledAt()))
	})

	s.Run("a cancelled booking cannot be moved in the same update", func() {
		b := s.existing(builder.DefaultNow.Add(200*time.Hour), 60, booking.StatusConfirmed)
		_, err := s.cmds.Update(context.Background(), commands.UpdateBookingInput{
			ActorID:     b.ClientID(),
			BookingID:   b.ID(),
			Status:      patch.Ptr(booking.StatusCancelled),
			ScheduledAt: patch.Ptr(builder.DefaultNow.Add(210 * time.Hour)),
		})
		s.ErrorIs(err, booking.ErrNotReschedulable)
		s.Equal(booking.StatusConfirmed, s.store.Booking(b.ID()).Status())
	})
}

func (s *BookingCommandsTestSuite) TestDelete() {
	s.Run("client deletes a pending booking", func() {
		b := s.create()
		s.Require().NoError(s.cmds.Delete(context.Background(), s.clientID, b.ID()))
		s.Nil(s.store.Booking(b.ID()))
	})

	cases := []struct {
		name   string
		status booking.Status
		actor  func(b *booking.Booking) uuid.UUID
		errIs  error
	}{
		{name: "provider may not delete", status: booking.StatusPending, actor: func(b *booking.Booking) uuid.UUID { return b.ProviderID() }, errIs: booking.ErrDeleteNotAllowed},
		{name: "completed is kept", status: booking.StatusCompleted, actor: func(b *booking.Booking) uuid.UUID { return b.ClientID() }, errIs: booking.ErrNotDeletable},
		{name: "cancelled is kept", status: booking.StatusCancelled, actor: func(b *booking.Booking) uuid.UUID { return b.ClientID() }, errIs: booking.ErrNotDeletable},
		{name: "stranger", status: booking.StatusPending, actor: func(*booking.Booking) uuid.UUID { return uuid.New() }, errIs: errs.ErrForbidden},
	}
	for i, tc := range cases {
		s.Run(tc.name, func() {
			b := s.existing(s.slotStart.Add(time.Duration(i+1)*24*time.Hour), 60, tc.status)
			err := s.cmds.Delete(context.Background(), tc.actor(b), b.ID())
			s.ErrorIs(err, tc.errIs)
			s.NotNil(s.store.Booking(b.ID()))
		})
	}

	s.Run("unknown booking", func() {
		s.ErrorIs(s.cmds.Delete(context.Background(), s.clientID, uuid.New()), errs.ErrNotFound)
	})
}

func (s *BookingCommandsTestSuite) TestCheckAvailability() {
	blocking := s.existing(s.slotStart, 60, booking.StatusInProgress)

	s.Run("busy slot reports the conflict", func() {
		res, err := s.cmds.CheckAvailability(context.Background(), commands.CheckAvailabilityInput{
			ProviderServiceID: s.provider.ID,
			ScheduledAt:       s.slotStart.Add(-30 * time.Minute),
		})
		s.Require().NoError(err)
		s.False(res.Available)
		s.Require().NotNil(res.Conflict)
		s.Equal(blocking.ID(), res.Conflict.BookingID)
		s.True(res.End.Equal(s.slotStart.Add(60 * time.Minute)))
	})

	s.Run("free slot", func() {
		res, err := s.cmds.CheckAvailability(context.Background(), commands.CheckAvailabilityInput{
			ProviderServiceID: s.provider.ID,
			ScheduledAt:       s.slotStart.Add(time.Hour),
			DurationMinutes:   patch.Ptr(30),
		})
		s.Require().NoError(err)
		s.True(res.Available)
		s.Nil(res.Conflict)
	})

	s.Run("bad duration and unknown service", func() {
		_, err := s.cmds.CheckAvailability(context.Background(), commands.CheckAvailabilityInput{
			ProviderServiceID: s.provider.ID,
			ScheduledAt:       s.slotStart,
			DurationMinutes:   patch.Ptr(10),
		})
		s.ErrorIs(err, errs.ErrDuration)

		_, err = s.cmds.CheckAvailability(context.Background(), commands.CheckAvailabilityInput{ProviderServiceID: uuid.New(), ScheduledAt: s.slotStart})
		s.ErrorIs(err, errs.ErrNotFound)
	})

	s.Equal(0, s.store.Commits())
}

// TestLifecycleScenario walks a booking from creation to completion.
func (s *BookingCommandsTestSuite) TestLifecycleScenario() {
	ctx := context.Background()
	providerID := s.provider.ProviderID

	created, err := s.cmds.Create(ctx, s.input())
	s.Require().NoError(err)
	id := created.Booking.ID()

	steps := []struct {
		actor uuid.UUID
		to    booking.Status
		event booking.EventType
	}{
		{actor: providerID, to: booking.StatusConfirmed, event: booking.EventConfirmed},
		{actor: providerID, to: booking.StatusInProgress, event: booking.EventUpdated},
		{actor: providerID, to: booking.StatusCompleted, event: booking.EventCompleted},
	}

	events := []booking.EventType{created.Event.Type}
	for _, step := range steps {
		s.clock.Add(time.Hour)
		res, err := s.cmds.ChangeStatus(ctx, step.actor, id, step.to, nil)
		s.Require().NoError(err, step.to)
		s.Equal(step.to, res.Booking.Status())
		events = append(events, res.Event.Type)
	}

	s.Equal([]booking.EventType{booking.EventCreated, booking.EventConfirmed, booking.EventUpdated, booking.EventCompleted}, events)

	final := s.store.Booking(id)
	s.Require().NotNil(final.CompletedAt())
	s.True(final.CompletedAt().Equal(builder.DefaultNow.Add(3 * time.Hour)))

	_, err = s.cmds.Cancel(ctx, providerID, id, nil)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	s.ErrorIs(s.cmds.Delete(ctx, s.clientID, id), booking.ErrNotDeletable)

	s.Equal(float64(3), s.counter("marketplace_booking_transitions_total"))
}
