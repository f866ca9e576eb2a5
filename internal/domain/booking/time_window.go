package booking

import "time"

const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480
)

// TimeWindow is the half-open interval [start, start+duration) a booking occupies.
type TimeWindow struct {
	start    time.Time
	duration time.Duration
}

func NewTimeWindow(start time.Time, durationMinutes int) (TimeWindow, error) {
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return TimeWindow{}, durationError(durationMinutes)
	}
	return TimeWindow{
		start:    normalize(start),
		duration: time.Duration(durationMinutes) * time.Minute,
	}, nil
}

// Postgres keeps microseconds; normalizing keeps in-memory and stored values comparable.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func (w TimeWindow) Start() time.Time {
	return w.start
}

func (w TimeWindow) End() time.Time {
	return w.start.Add(w.duration)
}

func (w TimeWindow) Duration() time.Duration {
	return w.duration
}

func (w TimeWindow) DurationMinutes() int {
	return int(w.duration / time.Minute)
}

// Overlaps is symmetric; windows that only touch at an endpoint do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.start.Before(other.End()) && w.End().After(other.start)
}

func (w TimeWindow) Equal(other TimeWindow) bool {
	return w.start.Equal(other.start) && w.duration == other.duration
}

func meetsLeadTime(start, now time.Time, lead time.Duration) error {
	earliest := now.Add(lead)
	if start.Before(earliest) {
		return leadTimeError(earliest)
	}
	return nil
}
