package booking

import (
	"time"

	"service-marketplace/internal/pkg/clock"
	"service-marketplace/internal/pkg/patch"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy holds the time gates of the booking lifecycle.
type Policy struct {
	LeadTime         time.Duration
	CancelNotice     time.Duration
	RescheduleNotice time.Duration
	DefaultCurrency  string
}

func DefaultPolicy() Policy {
	return Policy{
		LeadTime:         2 * time.Hour,
		CancelNotice:     24 * time.Hour,
		RescheduleNotice: 12 * time.Hour,
		DefaultCurrency:  DefaultCurrency,
	}
}

type Services struct {
	Clock  clock.Clock
	Policy Policy
}

// ServiceSpec is the provider service a booking is made against.
type ServiceSpec struct {
	ID              uuid.UUID
	ProviderID      uuid.UUID
	Price           decimal.Decimal
	Currency        string
	DurationMinutes int
	Active          bool
}

type NewBookingParams struct {
	ClientID        uuid.UUID
	Service         ServiceSpec
	ScheduledAt     time.Time
	DurationMinutes *int
	Location        *Location
	Notes           string
}

type Booking struct {
	id                 uuid.UUID
	clientID           uuid.UUID
	providerID         uuid.UUID
	providerServiceID  uuid.UUID
	window             TimeWindow
	price              Money
	location           *Location
	notes              Notes
	status             Status
	cancellationReason *string
	rejectionReason    *string
	completedAt        *time.Time
	providerNotes      Notes
	createdAt          time.Time
	updatedAt          time.Time
}

// NewBooking validates a request in a fixed order: service state, lead time,
// duration, then the remaining fields. Conflicts are checked by the caller
// against persisted bookings.
func NewBooking(services *Services, p NewBookingParams) (*Booking, *Event, error) {
	now := services.Clock.Now()

	if !p.Service.Active {
		return nil, nil, ErrServiceUnavailable
	}
	if p.Service.ProviderID == p.ClientID {
		return nil, nil, ErrSelfBooking
	}

	if err := meetsLeadTime(p.ScheduledAt, now, services.Policy.LeadTime); err != nil {
		return nil, nil, err
	}

	window, err := NewTimeWindow(p.ScheduledAt, patch.Coalesce(p.DurationMinutes, p.Service.DurationMinutes))
	if err != nil {
		return nil, nil, err
	}

	notes, err := NewNotes(p.Notes)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Location.Validate(); err != nil {
		return nil, nil, err
	}

	currency := p.Service.Currency
	if currency == "" {
		currency = services.Policy.DefaultCurrency
	}
	price, err := NewMoney(p.Service.Price, currency)
	if err != nil {
		return nil, nil, err
	}

	b := &Booking{
		id:                uuid.New(),
		clientID:          p.ClientID,
		providerID:        p.Service.ProviderID,
		providerServiceID: p.Service.ID,
		window:            window,
		price:             price,
		location:          p.Location,
		notes:             notes,
		status:            StatusPending,
		createdAt:         now,
		updatedAt:         now,
	}
	return b, newEvent(EventCreated, b, p.ClientID, "", nil, now), nil
}

type ReconstructParams struct {
	ID                 uuid.UUID
	ClientID           uuid.UUID
	ProviderID         uuid.UUID
	ProviderServiceID  uuid.UUID
	ScheduledAt        time.Time
	DurationMinutes    int
	Price              decimal.Decimal
	Currency           string
	Location           *Location
	Notes              string
	Status             Status
	CancellationReason *string
	RejectionReason    *string
	CompletedAt        *time.Time
	ProviderNotes      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ReconstructBooking rebuilds a persisted booking without re-running creation rules.
func ReconstructBooking(p ReconstructParams) *Booking {
	return &Booking{
		id:                 p.ID,
		clientID:           p.ClientID,
		providerID:         p.ProviderID,
		providerServiceID:  p.ProviderServiceID,
		window:             TimeWindow{start: normalize(p.ScheduledAt), duration: time.Duration(p.DurationMinutes) * time.Minute},
		price:              Money{amount: p.Price, currency: p.Currency},
		location:           p.Location,
		notes:              Notes{value: p.Notes},
		status:             p.Status,
		cancellationReason: p.CancellationReason,
		rejectionReason:    p.RejectionReason,
		completedAt:        p.CompletedAt,
		providerNotes:      Notes{value: p.ProviderNotes},
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
	}
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) ClientID() uuid.UUID          { return b.clientID }
func (b *Booking) ProviderID() uuid.UUID        { return b.providerID }
func (b *Booking) ProviderServiceID() uuid.UUID { return b.providerServiceID }
func (b *Booking) Window() TimeWindow           { return b.window }
func (b *Booking) ScheduledAt() time.Time       { return b.window.Start() }
func (b *Booking) Price() Money                 { return b.price }
func (b *Booking) Location() *Location          { return b.location }
func (b *Booking) Notes() Notes                 { return b.notes }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) CancellationReason() *string  { return b.cancellationReason }
func (b *Booking) RejectionReason() *string     { return b.rejectionReason }
func (b *Booking) CompletedAt() *time.Time      { return b.completedAt }
func (b *Booking) ProviderNotes() Notes         { return b.providerNotes }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }

func (b *Booking) IsActive() bool {
	return b.status.IsActive()
}

// PartyOf resolves which side of the booking the actor is on.
func (b *Booking) PartyOf(actorID uuid.UUID) (Party, error) {
	switch actorID {
	case b.clientID:
		return PartyClient, nil
	case b.providerID:
		return PartyProvider, nil
	default:
		return "", ErrNotParticipant
	}
}

func (b *Booking) IsParticipant(actorID uuid.UUID) bool {
	_, err := b.PartyOf(actorID)
	return err == nil
}

// AllowedTransitions lists the statuses the actor could move the booking to right now,
// ignoring time gates.
func (b *Booking) AllowedTransitions(actorID uuid.UUID) []Status {
	party, err := b.PartyOf(actorID)
	if err != nil {
		return nil
	}
	return AllowedTargets(b.status, party)
}

// Transition applies a status change requested by actorID. Cancellation is
// routed through Cancel so client notice rules apply on every entry point.
func (b *Booking) Transition(actorID uuid.UUID, to Status, reason *string, policy Policy, now time.Time) (*Event, error) {
	if to == StatusCancelled {
		return b.Cancel(actorID, reason, policy, now)
	}

	party, err := b.PartyOf(actorID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(b.status, to, party); err != nil {
		return nil, err
	}

	var stored *string
	if to == StatusRejected {
		if stored, err = normalizeReason("rejection_reason", reason); err != nil {
			return nil, err
		}
	}

	previous := b.status
	b.status = to
	switch to {
	case StatusRejected:
		b.rejectionReason = stored
	case StatusCompleted:
		completedAt := now
		b.completedAt = &completedAt
	}
	b.updatedAt = now

	return newEvent(eventTypeFor(to), b, actorID, previous, stored, now), nil
}

func (b *Booking) Cancel(actorID uuid.UUID, reason *string, policy Policy, now time.Time) (*Event, error) {
	party, err := b.PartyOf(actorID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(b.status, StatusCancelled, party); err != nil {
		return nil, err
	}
	if party == PartyClient && b.window.Start().Sub(now) <= policy.CancelNotice {
		return nil, ErrCancellationWindowClosed
	}

	stored, err := normalizeReason("cancellation_reason", reason)
	if err != nil {
		return nil, err
	}

	previous := b.status
	b.status = StatusCancelled
	b.cancellationReason = stored
	b.updatedAt = now

	return newEvent(EventCancelled, b, actorID, previous, stored, now), nil
}

// Reschedule moves the booking to a new interval. Only the time rules are
// checked here; the caller must run the conflict check excluding this booking.
func (b *Booking) Reschedule(actorID uuid.UUID, start time.Time, durationMinutes *int, policy Policy, now time.Time) (*Event, error) {
	party, err := b.PartyOf(actorID)
	if err != nil {
		return nil, err
	}
	if party != PartyClient {
		return nil, ErrRescheduleNotAllowed
	}
	if b.status != StatusPending && b.status != StatusConfirmed {
		return nil, ErrNotReschedulable
	}
	if b.window.Start().Sub(now) <= policy.RescheduleNotice {
		return nil, ErrRescheduleWindowClosed
	}
	if err := meetsLeadTime(start, now, policy.LeadTime); err != nil {
		return nil, err
	}

	window, err := NewTimeWindow(start, patch.Coalesce(durationMinutes, b.window.DurationMinutes()))
	if err != nil {
		return nil, err
	}

	b.window = window
	b.updatedAt = now

	return newEvent(EventUpdated, b, actorID, b.status, nil, now), nil
}

// DetailsPatch carries optional edits of descriptive fields.
type DetailsPatch struct {
	Notes         *string
	ProviderNotes *string
	Location      *Location
	ClearLocation bool
}

func (p DetailsPatch) IsEmpty() bool {
	return p.Notes == nil && p.ProviderNotes == nil && p.Location == nil && !p.ClearLocation
}

// UpdateDetails applies descriptive edits. It reports whether client notes changed,
// which is the only descriptive change that produces an event.
func (b *Booking) UpdateDetails(actorID uuid.UUID, p DetailsPatch, now time.Time) (bool, error) {
	party, err := b.PartyOf(actorID)
	if err != nil {
		return false, err
	}
	if p.IsEmpty() {
		return false, nil
	}

	notes := b.notes
	if p.Notes != nil {
		if notes, err = NewNotes(*p.Notes); err != nil {
			return false, err
		}
	}

	providerNotes := b.providerNotes
	if p.ProviderNotes != nil {
		if party != PartyProvider {
			return false, ErrProviderNotesNotAllowed
		}
		if providerNotes, err = NewProviderNotes(*p.ProviderNotes); err != nil {
			return false, err
		}
	}

	location := b.location
	switch {
	case p.ClearLocation:
		location = nil
	case p.Location != nil:
		if err := p.Location.Validate(); err != nil {
			return false, err
		}
		location = p.Location
	}

	notesChanged := notes != b.notes
	b.notes = notes
	b.providerNotes = providerNotes
	b.location = location
	b.updatedAt = now

	return notesChanged, nil
}

// UpdatedEvent builds a booking_updated event for changes that did not go through
// a status transition.
func (b *Booking) UpdatedEvent(actorID uuid.UUID, now time.Time) *Event {
	return newEvent(EventUpdated, b, actorID, b.status, nil, now)
}

// CheckDeletable allows hard deletion by the owning client while the booking is not terminal.
func (b *Booking) CheckDeletable(actorID uuid.UUID) error {
	party, err := b.PartyOf(actorID)
	if err != nil {
		return err
	}
	if party != PartyClient {
		return ErrDeleteNotAllowed
	}
	if b.status.IsTerminal() {
		return ErrNotDeletable
	}
	return nil
}

func (b *Booking) counterparts(actorID uuid.UUID) []uuid.UUID {
	switch actorID {
	case b.clientID:
		return []uuid.UUID{b.providerID}
	case b.providerID:
		return []uuid.UUID{b.clientID}
	default:
		return []uuid.UUID{b.clientID, b.providerID}
	}
}
