package bizcal

import (
	"testing"
	"time"
)

func toronto(t *testing.T) *Calendar {
	t.Helper()
	cal, err := New("America/Toronto")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cal
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestParseDate(t *testing.T) {
	d := mustDate(t, "2026-03-08")
	if d.String() != "2026-03-08" {
		t.Fatalf("round trip mismatch: %s", d)
	}
	for _, bad := range []string{"", "2026-3-8", "2026-02-30", "2026-03-08T09:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestWindowWinterAndSummer(t *testing.T) {
	cal := toronto(t)

	open, close := cal.Window(mustDate(t, "2026-01-15"), 9, 17)
	if want := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Fatalf("winter open: got %s want %s", open, want)
	}
	if want := time.Date(2026, 1, 15, 22, 0, 0, 0, time.UTC); !close.Equal(want) {
		t.Fatalf("winter close: got %s want %s", close, want)
	}

	open, _ = cal.Window(mustDate(t, "2026-07-15"), 9, 17)
	if want := time.Date(2026, 7, 15, 13, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Fatalf("summer open: got %s want %s", open, want)
	}
}

func TestWindowOnDSTTransitionDays(t *testing.T) {
	cal := toronto(t)

	// 2026-03-08: clocks jump 02:00 -> 03:00, so 09:00 is already EDT.
	open, close := cal.Window(mustDate(t, "2026-03-08"), 9, 17)
	if want := time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Fatalf("spring forward open: got %s want %s", open, want)
	}
	if close.Sub(open) != 8*time.Hour {
		t.Fatalf("expected an 8h window, got %s", close.Sub(open))
	}
	// The day before is still EST.
	open, _ = cal.Window(mustDate(t, "2026-03-07"), 9, 17)
	if want := time.Date(2026, 3, 7, 14, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Fatalf("pre-transition open: got %s want %s", open, want)
	}

	// 2026-11-01: clocks fall back 02:00 -> 01:00, 09:00 is EST again.
	open, _ = cal.Window(mustDate(t, "2026-11-01"), 9, 17)
	if want := time.Date(2026, 11, 1, 14, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Fatalf("fall back open: got %s want %s", open, want)
	}
}

func TestDayBoundsLengthOnTransitionDays(t *testing.T) {
	cal := toronto(t)
	start, end := cal.DayBounds(mustDate(t, "2026-03-08"))
	if end.Sub(start) != 23*time.Hour {
		t.Fatalf("spring forward day should be 23h, got %s", end.Sub(start))
	}
	start, end = cal.DayBounds(mustDate(t, "2026-11-01"))
	if end.Sub(start) != 25*time.Hour {
		t.Fatalf("fall back day should be 25h, got %s", end.Sub(start))
	}
}

func TestDateOfUsesBusinessZone(t *testing.T) {
	cal := toronto(t)
	// 02:30 UTC on the 16th is still the evening of the 15th in Toronto.
	got := cal.DateOf(time.Date(2026, 1, 16, 2, 30, 0, 0, time.UTC))
	if !got.Equal(mustDate(t, "2026-01-15")) {
		t.Fatalf("expected 2026-01-15, got %s", got)
	}
	if !cal.Today(time.Date(2026, 1, 16, 5, 0, 0, 0, time.UTC)).Equal(mustDate(t, "2026-01-16")) {
		t.Fatal("expected the 16th once it is past local midnight")
	}
}

func TestOffset(t *testing.T) {
	cal := toronto(t)
	if got := cal.Offset(mustDate(t, "2026-01-15")); got != -5*time.Hour {
		t.Fatalf("winter offset: %s", got)
	}
	if got := cal.Offset(mustDate(t, "2026-07-15")); got != -4*time.Hour {
		t.Fatalf("summer offset: %s", got)
	}
}

func TestDateOrdering(t *testing.T) {
	a := mustDate(t, "2026-12-31")
	b := a.AddDays(1)
	if b.String() != "2027-01-01" {
		t.Fatalf("AddDays across year: %s", b)
	}
	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Fatal("unexpected Before ordering")
	}
}

func TestNewRejectsUnknownZone(t *testing.T) {
	if _, err := New("Mars/Olympus_Mons"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}
