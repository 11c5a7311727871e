package pickweek

import (
	"testing"
	"time"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := ParseDate(value)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return parsed
}

func TestNextSunday(t *testing.T) {
	t.Parallel()

	cases := []struct {
		today string
		want  string
	}{
		{today: "2025-01-05", want: "2025-01-12"}, // Sunday
		{today: "2025-01-06", want: "2025-01-12"},
		{today: "2025-01-10", want: "2025-01-12"},
		{today: "2025-01-11", want: "2025-01-12"}, // Saturday
		{today: "2024-12-29", want: "2025-01-05"},
		{today: "2024-02-28", want: "2024-03-03"},
	}

	for _, tc := range cases {
		got := NextSunday(date(t, tc.today))
		if FormatDate(got) != tc.want {
			t.Fatalf("NextSunday(%s): expected %s, got %s", tc.today, tc.want, FormatDate(got))
		}
		if got.Weekday() != time.Sunday {
			t.Fatalf("NextSunday(%s) is a %s", tc.today, got.Weekday())
		}
		if !got.After(date(t, tc.today)) {
			t.Fatalf("NextSunday(%s) must be strictly after today", tc.today)
		}
	}
}

func TestCurrentWeekSunday_ContainsToday(t *testing.T) {
	t.Parallel()

	start := date(t, "2025-03-01")
	for i := 0; i < 21; i++ {
		today := start.AddDate(0, 0, i)
		sunday := CurrentWeekSunday(today)
		if sunday.Weekday() != time.Sunday {
			t.Fatalf("CurrentWeekSunday(%s) is a %s", FormatDate(today), sunday.Weekday())
		}
		if today.Before(sunday) || !today.Before(sunday.AddDate(0, 0, 7)) {
			t.Fatalf("CurrentWeekSunday(%s)=%s does not contain today", FormatDate(today), FormatDate(sunday))
		}
	}

	sunday := date(t, "2025-03-02")
	if got := CurrentWeekSunday(sunday); !got.Equal(sunday) {
		t.Fatalf("expected Sunday to map to itself, got %s", FormatDate(got))
	}
}

func TestPicksWeekSunday(t *testing.T) {
	t.Parallel()

	// 2025-01-05 is a Sunday.
	week := date(t, "2025-01-05")
	for i := 0; i < 7; i++ {
		today := week.AddDate(0, 0, i)
		got := PicksWeekSunday(today)
		if got.Weekday() != time.Sunday {
			t.Fatalf("PicksWeekSunday(%s) is a %s", FormatDate(today), got.Weekday())
		}

		want := week
		if today.Weekday() == time.Saturday {
			want = week.AddDate(0, 0, 7)
		}
		if !got.Equal(want) {
			t.Fatalf("PicksWeekSunday(%s): expected %s, got %s", FormatDate(today), FormatDate(want), FormatDate(got))
		}
	}
}

func TestIsPickEditingOpen_FullCycle(t *testing.T) {
	t.Parallel()

	start := date(t, "2025-01-05")
	for i := 0; i < 7; i++ {
		today := start.AddDate(0, 0, i)
		want := today.Weekday() == time.Saturday
		if got := IsPickEditingOpen(today); got != want {
			t.Fatalf("IsPickEditingOpen(%s %s): expected %v, got %v", FormatDate(today), today.Weekday(), want, got)
		}
	}
}

func TestWeekIDAndRange(t *testing.T) {
	t.Parallel()

	sunday := date(t, "2025-01-05")
	if got := WeekID(sunday); got != "2025-01-05" {
		t.Fatalf("unexpected week id %q", got)
	}

	start, end := WeekDateRange(sunday)
	if FormatDate(start) != "2025-01-05" || FormatDate(end) != "2025-01-11" {
		t.Fatalf("unexpected range %s..%s", FormatDate(start), FormatDate(end))
	}
	if end.Weekday() != time.Saturday {
		t.Fatalf("expected range to end on Saturday, got %s", end.Weekday())
	}
	if !Contains(sunday, end) || Contains(sunday, end.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected Contains result at range edge")
	}
}

func TestParseWeekID(t *testing.T) {
	t.Parallel()

	if _, err := ParseWeekID("2025-01-05"); err != nil {
		t.Fatalf("expected Sunday week id to parse: %v", err)
	}
	if _, err := ParseWeekID("2025-01-06"); err == nil {
		t.Fatalf("expected Monday week id to be rejected")
	}
	if _, err := ParseWeekID("not-a-date"); err == nil {
		t.Fatalf("expected malformed week id to be rejected")
	}
}

func TestDate_UsesLocation(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 02:00 UTC on Sunday is still Saturday evening in New York.
	instant := time.Date(2025, 1, 12, 2, 0, 0, 0, time.UTC)
	got := Date(instant, loc)
	if FormatDate(got) != "2025-01-11" {
		t.Fatalf("expected 2025-01-11, got %s", FormatDate(got))
	}
	if !IsPickEditingOpen(got) {
		t.Fatalf("expected editing to be open on local Saturday")
	}
}

func TestWindows_SaturdayRollover(t *testing.T) {
	t.Parallel()

	saturday := date(t, "2025-01-11")

	picks := PickWindow(saturday)
	if picks.WeekID != "2025-01-12" || !picks.EditingOpen {
		t.Fatalf("unexpected pick window: %+v", picks)
	}

	scoring := ScoringWindow(saturday)
	if scoring.WeekID != "2025-01-05" || scoring.EditingOpen {
		t.Fatalf("unexpected scoring window: %+v", scoring)
	}

	wednesday := date(t, "2025-01-08")
	locked := PickWindow(wednesday)
	if locked.WeekID != "2025-01-05" || locked.EditingOpen {
		t.Fatalf("unexpected midweek pick window: %+v", locked)
	}

	window, err := WindowFor("2025-01-12", saturday)
	if err != nil {
		t.Fatalf("window for: %v", err)
	}
	if !window.EditingOpen {
		t.Fatalf("expected upcoming week to be editable on Saturday")
	}
}
