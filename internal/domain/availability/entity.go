package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"service-marketplace/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidSlot = fmt.Errorf("%w: invalid availability slot", errs.ErrValidation)
	ErrNotOwner    = fmt.Errorf("%w: availability slot belongs to another provider", errs.ErrForbidden)
	ErrNotProvider = fmt.Errorf("%w: only providers manage availability", errs.ErrForbidden)
)

// OverlapError names the existing slot a write collides with.
type OverlapError struct {
	SlotID uuid.UUID
	Day    DayOfWeek
	Start  TimeOfDay
	End    TimeOfDay
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("availability overlaps slot %s (%s %s-%s)", e.SlotID, e.Day, e.Start, e.End)
}

func (e *OverlapError) Is(target error) bool {
	return target == errs.ErrValidation
}

func AsOverlap(err error) (*OverlapError, bool) {
	var oe *OverlapError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// Availability is one weekly recurring window in which a provider is open for work.
type Availability struct {
	id         uuid.UUID
	providerID uuid.UUID
	day        DayOfWeek
	start      TimeOfDay
	end        TimeOfDay
	createdAt  time.Time
	updatedAt  time.Time
}

func NewAvailability(providerID uuid.UUID, day DayOfWeek, start, end TimeOfDay, now time.Time) (*Availability, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return &Availability{
		id:         uuid.New(),
		providerID: providerID,
		day:        day,
		start:      start,
		end:        end,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstructAvailability(id, providerID uuid.UUID, day DayOfWeek, start, end TimeOfDay, createdAt, updatedAt time.Time) *Availability {
	return &Availability{
		id:         id,
		providerID: providerID,
		day:        day,
		start:      start,
		end:        end,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func validateRange(start, end TimeOfDay) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start_time %s must be before end_time %s", ErrInvalidSlot, start, end)
	}
	if start.Minutes() >= minutesPerDay {
		return fmt.Errorf("%w: start_time cannot be 24:00", ErrInvalidSlot)
	}
	return nil
}

func (a *Availability) ID() uuid.UUID         { return a.id }
func (a *Availability) ProviderID() uuid.UUID { return a.providerID }
func (a *Availability) Day() DayOfWeek        { return a.day }
func (a *Availability) Start() TimeOfDay      { return a.start }
func (a *Availability) End() TimeOfDay        { return a.end }
func (a *Availability) CreatedAt() time.Time  { return a.createdAt }
func (a *Availability) UpdatedAt() time.Time  { return a.updatedAt }

func (a *Availability) CheckOwner(providerID uuid.UUID) error {
	if a.providerID != providerID {
		return ErrNotOwner
	}
	return nil
}

func (a *Availability) Reschedule(day DayOfWeek, start, end TimeOfDay, now time.Time) error {
	if err := validateRange(start, end); err != nil {
		return err
	}
	a.day = day
	a.start = start
	a.end = end
	a.updatedAt = now
	return nil
}

// Overlaps uses half-open ranges, so 09:00-12:00 and 12:00-15:00 can coexist.
func (a *Availability) Overlaps(other *Availability) bool {
	return a.day == other.day && a.start.Before(other.end) && other.start.Before(a.end)
}

// CheckOverlap compares candidate against the provider's other slots, skipping itself.
func CheckOverlap(candidate *Availability, existing []*Availability) error {
	for _, s := range existing {
		if s.id == candidate.id || s.providerID != candidate.providerID {
			continue
		}
		if candidate.Overlaps(s) {
			return &OverlapError{SlotID: s.id, Day: s.day, Start: s.start, End: s.end}
		}
	}
	return nil
}

// Sort orders slots by day of week, then start time.
func Sort(slots []*Availability) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].day != slots[j].day {
			return slots[i].day < slots[j].day
		}
		return slots[i].start.Before(slots[j].start)
	})
}
