package pickweek

import (
	"fmt"
	"strings"
	"time"
)

const (
	daysPerWeek = 7
	layout      = time.DateOnly
)

// Window describes one Sunday-to-Saturday pick-week.
type Window struct {
	WeekID      string
	Start       time.Time
	End         time.Time
	EditingOpen bool
}

// Date reduces an instant to its calendar day in loc. The result is midnight UTC so
// dates compare and add without DST drift.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextSunday returns the first Sunday strictly after today. A Sunday maps to the
// following Sunday.
func NextSunday(today time.Time) time.Time {
	today = day(today)
	offset := (daysPerWeek - int(today.Weekday())) % daysPerWeek
	if offset == 0 {
		offset = daysPerWeek
	}
	return today.AddDate(0, 0, offset)
}

// CurrentWeekSunday returns the Sunday that opens the week containing today.
func CurrentWeekSunday(today time.Time) time.Time {
	today = day(today)
	return today.AddDate(0, 0, -int(today.Weekday()))
}

// PicksWeekSunday returns the Sunday whose week accepts picks today. On Saturday picks
// roll over to the upcoming week.
func PicksWeekSunday(today time.Time) time.Time {
	if IsPickEditingOpen(today) {
		return NextSunday(today)
	}
	return CurrentWeekSunday(today)
}

// IsPickEditingOpen reports whether picks may be created or changed on today.
func IsPickEditingOpen(today time.Time) bool {
	return today.Weekday() == time.Saturday
}

func WeekID(sunday time.Time) string {
	return day(sunday).Format(layout)
}

// ParseWeekID parses a YYYY-MM-DD week id and requires it to be a Sunday.
func ParseWeekID(id string) (time.Time, error) {
	value := strings.TrimSpace(id)
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse week id %q: %w", id, err)
	}
	if parsed.Weekday() != time.Sunday {
		return time.Time{}, fmt.Errorf("week id %q is a %s, expected Sunday", id, parsed.Weekday())
	}
	return parsed, nil
}

// WeekDateRange returns the inclusive Sunday..Saturday range.
func WeekDateRange(sunday time.Time) (time.Time, time.Time) {
	start := day(sunday)
	return start, start.AddDate(0, 0, daysPerWeek-1)
}

// Contains reports whether date falls inside the week starting at sunday.
func Contains(sunday, date time.Time) bool {
	start, end := WeekDateRange(sunday)
	d := day(date)
	return !d.Before(start) && !d.After(end)
}

// PickWindow is the week users submit picks for on today.
func PickWindow(today time.Time) Window {
	return newWindow(PicksWeekSunday(today), IsPickEditingOpen(today))
}

// ScoringWindow is the week in progress on today.
func ScoringWindow(today time.Time) Window {
	return windowAt(CurrentWeekSunday(today), today)
}

// WindowFor builds the window for an explicit week id relative to today.
func WindowFor(weekID string, today time.Time) (Window, error) {
	sunday, err := ParseWeekID(weekID)
	if err != nil {
		return Window{}, err
	}
	return windowAt(sunday, today), nil
}

// windowAt marks a week editable only when it is the week accepting picks today.
func windowAt(sunday, today time.Time) Window {
	return newWindow(sunday, IsPickEditingOpen(today) && PicksWeekSunday(today).Equal(day(sunday)))
}

func newWindow(sunday time.Time, open bool) Window {
	start, end := WeekDateRange(sunday)
	return Window{
		WeekID:      WeekID(sunday),
		Start:       start,
		End:         end,
		EditingOpen: open,
	}
}

func FormatDate(t time.Time) string {
	return day(t).Format(layout)
}

func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return parsed, nil
}
