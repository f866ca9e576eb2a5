//go:build unit || e2e

// Package memstore is an in-memory UnitOfWork for command and query tests.
// Transactions are serialized and work on copies, so a failing fn leaves no trace.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/pkg/clock"
	"service-marketplace/internal/pkg/errs"
	"service-marketplace/internal/usecase/queries"
	"service-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
)

var errNotFound = fmt.Errorf("%w: memstore row not found", errs.ErrNotFound)

type state struct {
	bookings     map[uuid.UUID]*booking.Booking
	slots        map[uuid.UUID]*availability.Availability
	idempotency  map[string]shared.IdempotencyRecord
	transactions int
}

func (s *state) clone() *state {
	c := &state{
		bookings:     make(map[uuid.UUID]*booking.Booking, len(s.bookings)),
		slots:        make(map[uuid.UUID]*availability.Availability, len(s.slots)),
		idempotency:  make(map[string]shared.IdempotencyRecord, len(s.idempotency)),
		transactions: s.transactions,
	}
	for id, b := range s.bookings {
		c.bookings[id] = CloneBooking(b)
	}
	for id, a := range s.slots {
		c.slots[id] = cloneSlot(a)
	}
	for k, r := range s.idempotency {
		c.idempotency[k] = r
	}
	return c
}

type Store struct {
	mu       sync.Mutex
	clock    clock.Clock
	services map[uuid.UUID]*shared.ProviderServiceSnapshot
	data     *state

	// CreateErr, when set, is returned by the next booking insert.
	CreateErr error
}

func New(clk clock.Clock) *Store {
	return &Store{
		clock:    clk,
		services: map[uuid.UUID]*shared.ProviderServiceSnapshot{},
		data: &state{
			bookings:    map[uuid.UUID]*booking.Booking{},
			slots:       map[uuid.UUID]*availability.Availability{},
			idempotency: map[string]shared.IdempotencyRecord{},
		},
	}
}

func (s *Store) AddService(svc *shared.ProviderServiceSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

func (s *Store) AddBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.bookings[b.ID()] = CloneBooking(b)
}

func (s *Store) AddSlot(a *availability.Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.slots[a.ID()] = cloneSlot(a)
}

// Booking returns a copy of the committed booking, or nil.
func (s *Store) Booking(id uuid.UUID) *booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.data.bookings[id]; ok {
		return CloneBooking(b)
	}
	return nil
}

func (s *Store) Bookings() []*booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Booking, 0, len(s.data.bookings))
	for _, b := range s.data.bookings {
		out = append(out, CloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt().Before(out[j].ScheduledAt()) })
	return out
}

func (s *Store) Slots(providerID uuid.UUID) []*availability.Availability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.slotsOf(providerID)
}

func (s *Store) Idempotency(key string, userID uuid.UUID) (shared.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.idempotency[idemKey(key, userID)]
	return r, ok
}

// Commits counts successful transactions.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.transactions
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	tx := &memTx{store: s, data: work}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	work.transactions++
	s.data = work
	return nil
}

func (s *Store) CommandReads() shared.CommandReads {
	return &lockedReads{store: s}
}

type lockedReads struct {
	store *Store
}

func (r *lockedReads) ProviderServiceByID(ctx context.Context, id uuid.UUID) (*shared.ProviderServiceSnapshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&memReads{store: r.store, data: r.store.data}).ProviderServiceByID(ctx, id)
}

func (r *lockedReads) ActiveBookingsByProvider(ctx context.Context, providerID uuid.UUID) ([]*booking.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&memReads{store: r.store, data: r.store.data}).ActiveBookingsByProvider(ctx, providerID)
}

type memTx struct {
	store *Store
	data  *state
}

func (t *memTx) Bookings() shared.BookingRepository {
	return &bookingRepo{store: t.store, data: t.data}
}

func (t *memTx) Availability() shared.AvailabilityRepository {
	return &slotRepo{data: t.data}
}

func (t *memTx) Idempotency() shared.IdempotencyRepository {
	return &idempotencyRepo{data: t.data, clock: t.store.clock}
}

func (t *memTx) Reads() shared.CommandReads {
	return &memReads{store: t.store, data: t.data}
}

type memReads struct {
	store *Store
	data  *state
}

func (r *memReads) ProviderServiceByID(_ context.Context, id uuid.UUID) (*shared.ProviderServiceSnapshot, error) {
	svc, ok := r.store.services[id]
	if !ok {
		return nil, errNotFound
	}
	c := *svc
	return &c, nil
}

func (r *memReads) ActiveBookingsByProvider(_ context.Context, providerID uuid.UUID) ([]*booking.Booking, error) {
	return r.data.activeOf(providerID, uuid.Nil), nil
}

func (s *state) activeOf(providerID, exclude uuid.UUID) []*booking.Booking {
	var out []*booking.Booking
	for _, b := range s.bookings {
		if b.ProviderID() == providerID && b.ID() != exclude && b.IsActive() {
			out = append(out, CloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt().Before(out[j].ScheduledAt()) })
	return out
}

func (s *state) slotsOf(providerID uuid.UUID) []*availability.Availability {
	var out []*availability.Availability
	for _, a := range s.slots {
		if a.ProviderID() == providerID {
			out = append(out, cloneSlot(a))
		}
	}
	availability.Sort(out)
	return out
}

type bookingRepo struct {
	store *Store
	data  *state
}

func (r *bookingRepo) LockProvider(context.Context, uuid.UUID) error {
	return nil
}

func (r *bookingRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.data.bookings[id]
	if !ok {
		return nil, errNotFound
	}
	return CloneBooking(b), nil
}

func (r *bookingRepo) ListActiveByProvider(_ context.Context, providerID, exclude uuid.UUID) ([]*booking.Booking, error) {
	return r.data.activeOf(providerID, exclude), nil
}

func (r *bookingRepo) Create(_ context.Context, b *booking.Booking) error {
	if err := r.store.CreateErr; err != nil {
		r.store.CreateErr = nil
		return err
	}
	if _, exists := r.data.bookings[b.ID()]; exists {
		return fmt.Errorf("%w: duplicate booking id", errs.ErrDatabaseOperationFailed)
	}
	r.data.bookings[b.ID()] = CloneBooking(b)
	return nil
}

func (r *bookingRepo) Update(_ context.Context, b *booking.Booking) error {
	if _, ok := r.data.bookings[b.ID()]; !ok {
		return errNotFound
	}
	r.data.bookings[b.ID()] = CloneBooking(b)
	return nil
}

func (r *bookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.data.bookings[id]; !ok {
		return errNotFound
	}
	delete(r.data.bookings, id)
	return nil
}

type slotRepo struct {
	data *state
}

func (r *slotRepo) LockProvider(context.Context, uuid.UUID) error {
	return nil
}

func (r *slotRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*availability.Availability, error) {
	a, ok := r.data.slots[id]
	if !ok {
		return nil, errNotFound
	}
	return cloneSlot(a), nil
}

func (r *slotRepo) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*availability.Availability, error) {
	return r.data.slotsOf(providerID), nil
}

func (r *slotRepo) Create(_ context.Context, a *availability.Availability) error {
	r.data.slots[a.ID()] = cloneSlot(a)
	return nil
}

func (r *slotRepo) Update(_ context.Context, a *availability.Availability) error {
	if _, ok := r.data.slots[a.ID()]; !ok {
		return errNotFound
	}
	r.data.slots[a.ID()] = cloneSlot(a)
	return nil
}

func (r *slotRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.data.slots[id]; !ok {
		return errNotFound
	}
	delete(r.data.slots, id)
	return nil
}

type idempotencyRepo struct {
	data  *state
	clock clock.Clock
}

func idemKey(key string, userID uuid.UUID) string {
	return userID.String() + "/" + key
}

func (r *idempotencyRepo) TryInsert(_ context.Context, rec shared.IdempotencyRecord) (bool, error) {
	k := idemKey(rec.Key, rec.UserID)
	if _, exists := r.data.idempotency[k]; exists {
		return false, nil
	}
	r.data.idempotency[k] = rec
	return true, nil
}

func (r *idempotencyRepo) Get(_ context.Context, key string, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.data.idempotency[idemKey(key, userID)]
	if !ok {
		return nil, errNotFound
	}
	return &rec, nil
}

func (r *idempotencyRepo) ClaimExpired(_ context.Context, rec shared.IdempotencyRecord) (bool, error) {
	k := idemKey(rec.Key, rec.UserID)
	existing, ok := r.data.idempotency[k]
	if !ok || existing.ExpiresAt.After(r.clock.Now()) {
		return false, nil
	}
	r.data.idempotency[k] = rec
	return true, nil
}

func (r *idempotencyRepo) UpdateStatusCompleted(_ context.Context, key string, userID, bookingID uuid.UUID) error {
	k := idemKey(key, userID)
	rec, ok := r.data.idempotency[k]
	if !ok {
		return errNotFound
	}
	rec.Status = shared.IdempotencyCompleted
	rec.BookingID = &bookingID
	r.data.idempotency[k] = rec
	return nil
}

// ReadStore serves the query side from the same committed state.
type ReadStore struct {
	store *Store
}

func (s *Store) ReadStore() *ReadStore {
	return &ReadStore{store: s}
}

func (r *ReadStore) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	if b := r.store.Booking(id); b != nil {
		return b, nil
	}
	return nil, errNotFound
}

func (r *ReadStore) ListByParticipant(_ context.Context, userID uuid.UUID, filter queries.BookingFilter, after *queries.Keyset, limit int) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.store.Bookings() {
		switch {
		case filter.As == nil:
			if !b.IsParticipant(userID) {
				continue
			}
		case *filter.As == booking.PartyProvider:
			if b.ProviderID() != userID {
				continue
			}
		default:
			if b.ClientID() != userID {
				continue
			}
		}
		if filter.Status != nil && b.Status() != *filter.Status {
			continue
		}
		if after != nil && !before(b, after) {
			continue
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt().Equal(out[j].ScheduledAt()) {
			return out[i].ScheduledAt().After(out[j].ScheduledAt())
		}
		return out[i].ID().String() > out[j].ID().String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// before mirrors the SQL row comparison (scheduled_at, id) < (after.ScheduledAt, after.ID).
func before(b *booking.Booking, after *queries.Keyset) bool {
	at := b.ScheduledAt().Truncate(time.Microsecond)
	if !at.Equal(after.ScheduledAt) {
		return at.Before(after.ScheduledAt)
	}
	return b.ID().String() < after.ID.String()
}

func (r *ReadStore) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*queries.AvailabilityView, error) {
	slots := r.store.Slots(providerID)
	views := make([]*queries.AvailabilityView, len(slots))
	for i, a := range slots {
		views[i] = queries.NewAvailabilityView(a)
	}
	return views, nil
}

func CloneBooking(b *booking.Booking) *booking.Booking {
	var location *booking.Location
	if b.Location() != nil {
		l := *b.Location()
		location = &l
	}
	return booking.ReconstructBooking(booking.ReconstructParams{
		ID:                 b.ID(),
		ClientID:           b.ClientID(),
		ProviderID:         b.ProviderID(),
		ProviderServiceID:  b.ProviderServiceID(),
		ScheduledAt:        b.ScheduledAt(),
		DurationMinutes:    b.Window().DurationMinutes(),
		Price:              b.Price().Amount(),
		Currency:           b.Price().Currency(),
		Location:           location,
		Notes:              b.Notes().String(),
		Status:             b.Status(),
		CancellationReason: b.CancellationReason(),
		RejectionReason:    b.RejectionReason(),
		CompletedAt:        b.CompletedAt(),
		ProviderNotes:      b.ProviderNotes().String(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	})
}

func cloneSlot(a *availability.Availability) *availability.Availability {
	return availability.ReconstructAvailability(a.ID(), a.ProviderID(), a.Day(), a.Start(), a.End(), a.CreatedAt(), a.UpdatedAt())
}
