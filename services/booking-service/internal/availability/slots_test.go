package availability

import (
	"reflect"
	"testing"
	"time"
)

func TestSlots_Basic(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(9 * time.Hour)
	windowEnd := day.Add(10 * time.Hour)

	busy := []Interval{
		{Start: day.Add(9*time.Hour + 15*time.Minute), End: day.Add(9*time.Hour + 45*time.Minute)},
	}

	slots := Slots(windowStart, windowEnd, 15*time.Minute, busy, time.Time{})
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	want := []bool{true, false, false, true}
	for i, s := range slots {
		if s.Available != want[i] {
			t.Fatalf("slot %d (%s): expected available=%v", i, s.Start.Format(time.RFC3339), want[i])
		}
	}
	if !slots[3].Start.Equal(day.Add(9*time.Hour + 45*time.Minute)) {
		t.Fatalf("expected last slot 09:45, got %s", slots[3].Start.Format(time.RFC3339))
	}
}

func TestSlots_CutoffMarksPast(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(9 * time.Hour)
	windowEnd := day.Add(10 * time.Hour)

	now := day.Add(9*time.Hour + 30*time.Minute)
	slots := Slots(windowStart, windowEnd, 15*time.Minute, nil, now)
	// 09:00, 09:15 and 09:30 start at or before now.
	var open int
	for _, s := range slots {
		if s.Available {
			open++
			if !s.Start.Equal(day.Add(9*time.Hour + 45*time.Minute)) {
				t.Fatalf("unexpected available slot %s", s.Start.Format(time.RFC3339))
			}
		}
	}
	if len(slots) != 4 || open != 1 {
		t.Fatalf("expected 4 slots with 1 open, got %d with %d open", len(slots), open)
	}
}

func TestSlots_FloorCount(t *testing.T) {
	day := time.Date(2026, 7, 15, 13, 0, 0, 0, time.UTC)
	cases := []struct {
		window, duration time.Duration
		want             int
	}{
		{8 * time.Hour, time.Hour, 8},
		{8 * time.Hour, 150 * time.Minute, 3},
		{8 * time.Hour, 240 * time.Minute, 2},
		{8 * time.Hour, 9 * time.Hour, 0},
		{8 * time.Hour, 0, 0},
		{0, time.Hour, 0},
	}
	for _, tc := range cases {
		got := Slots(day, day.Add(tc.window), tc.duration, nil, time.Time{})
		if len(got) != tc.want {
			t.Fatalf("window %s duration %s: expected %d slots, got %d", tc.window, tc.duration, tc.want, len(got))
		}
		for i, s := range got {
			if !s.Available {
				t.Fatalf("slot %d should be available on an empty day", i)
			}
			if s.End.Sub(s.Start) != tc.duration {
				t.Fatalf("slot %d has wrong length %s", i, s.End.Sub(s.Start))
			}
		}
	}
}

func TestSlots_AdjacentBookingDoesNotBlock(t *testing.T) {
	open := time.Date(2026, 7, 15, 13, 0, 0, 0, time.UTC)
	busy := []Interval{{Start: open.Add(time.Hour), End: open.Add(2 * time.Hour)}}
	slots := Slots(open, open.Add(3*time.Hour), time.Hour, busy, time.Time{})
	if !slots[0].Available || slots[1].Available || !slots[2].Available {
		t.Fatalf("unexpected availability %+v", slots)
	}
}

func TestSlots_Idempotent(t *testing.T) {
	open := time.Date(2026, 7, 15, 13, 0, 0, 0, time.UTC)
	busy := []Interval{{Start: open.Add(90 * time.Minute), End: open.Add(150 * time.Minute)}}
	a := Slots(open, open.Add(8*time.Hour), time.Hour, busy, time.Time{})
	b := Slots(open, open.Add(8*time.Hour), time.Hour, busy, time.Time{})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical output for identical input")
	}
	for i := 1; i < len(a); i++ {
		if !a[i].Start.After(a[i-1].Start) {
			t.Fatal("slots must be ascending")
		}
	}
}
