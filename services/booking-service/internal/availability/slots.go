package availability

import "time"

type Interval struct {
	Start time.Time
	End   time.Time
}

type Slot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// Overlaps applies the half-open rule: [start,end) overlaps [i.Start,i.End)
// iff start < i.End && end > i.Start.
func (i Interval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && end.After(i.Start)
}

// Slots tiles [windowStart, windowEnd) with back-to-back slots of length
// duration. A trailing remainder shorter than duration is dropped, so the
// count is floor(window / duration).
//
// A slot is unavailable when it overlaps any busy interval, or when cutoff is
// non-zero and the slot starts at or before it.
func Slots(windowStart, windowEnd time.Time, duration time.Duration, busy []Interval, cutoff time.Time) []Slot {
	if duration <= 0 || !windowEnd.After(windowStart) {
		return nil
	}
	n := int(windowEnd.Sub(windowStart) / duration)
	if n == 0 {
		return nil
	}

	slots := make([]Slot, 0, n)
	for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(duration) {
		end := t.Add(duration)
		available := !overlapsAny(t, end, busy)
		if available && !cutoff.IsZero() && !t.After(cutoff) {
			available = false
		}
		slots = append(slots, Slot{Start: t, End: end, Available: available})
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
