package booking

import (
	"sort"

	"github.com/google/uuid"
)

// FindConflict returns the earliest active booking in existing whose window
// overlaps candidate, skipping exclude. It returns nil when the slot is free.
func FindConflict(candidate TimeWindow, existing []*Booking, exclude uuid.UUID) *Booking {
	var hits []*Booking
	for _, b := range existing {
		if b == nil || b.id == exclude || !b.status.IsActive() {
			continue
		}
		if candidate.Overlaps(b.window) {
			hits = append(hits, b)
		}
	}
	if len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].window.Start().Before(hits[j].window.Start())
	})
	return hits[0]
}

// CheckConflict is FindConflict reported as an error.
func CheckConflict(candidate TimeWindow, existing []*Booking, exclude uuid.UUID) error {
	if hit := FindConflict(candidate, existing, exclude); hit != nil {
		return NewConflictError(hit)
	}
	return nil
}
