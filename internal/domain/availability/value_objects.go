package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayOfWeek follows time.Weekday numbering: 0 is Sunday, 6 is Saturday.
type DayOfWeek int

func NewDayOfWeek(d int) (DayOfWeek, error) {
	if d < 0 || d > 6 {
		return 0, fmt.Errorf("%w: day_of_week must be between 0 and 6", ErrInvalidSlot)
	}
	return DayOfWeek(d), nil
}

func (d DayOfWeek) Int() int {
	return int(d)
}

func (d DayOfWeek) String() string {
	return time.Weekday(d).String()
}

// TimeOfDay is an offset from midnight with minute precision. 24:00 is allowed as an end bound.
type TimeOfDay struct {
	minutes int
}

const minutesPerDay = 24 * 60

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d is not a valid time of day", ErrInvalidSlot, hour, minute)
	}
	return TimeOfDay{minutes: hour*60 + minute}, nil
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS"; seconds must be zero.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidSlot, s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		if len(p) != 2 {
			return TimeOfDay{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidSlot, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidSlot, s)
		}
		nums[i] = n
	}
	if len(nums) == 3 && nums[2] != 0 {
		return TimeOfDay{}, fmt.Errorf("%w: %q must be on a whole minute", ErrInvalidSlot, s)
	}
	return NewTimeOfDay(nums[0], nums[1])
}

// TimeOfDayFromDuration converts a Postgres TIME value expressed as an offset from midnight.
func TimeOfDayFromDuration(d time.Duration) TimeOfDay {
	return TimeOfDay{minutes: int(d / time.Minute)}
}

func (t TimeOfDay) Minutes() int {
	return t.minutes
}

func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.minutes) * time.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.minutes < other.minutes
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}
