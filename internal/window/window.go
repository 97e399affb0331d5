// Package window classifies reservations against wall-clock time.
//
// The listing API returns calendar dates and time-of-day values as raw
// strings in several inconsistent shapes. This package is the single
// owner of their interpretation: it resolves a reservation's active
// window, classifies it as active, expired or invalid relative to a
// reference instant, and renders the remaining-time text the display
// layer shows next to each row.
package window

import (
	"fmt"
	"time"

	"ureserve/internal/models"
)

// State classifies a reservation window at an instant.
type State string

const (
	StatePending State = "pending"
	StateActive  State = "active"
	StateExpired State = "expired"
	StateInvalid State = "invalid"
)

// IsTerminal reports whether a state admits no further transitions.
// Expired and invalid rows stop ticking.
func (s State) IsTerminal() bool {
	return s == StateExpired || s == StateInvalid
}

// Display texts rendered by the UI for each classification.
const (
	TextPending = "Cargando..."
	TextExpired = "Finalizado"
	TextInvalid = "--:--"
)

// Window is a reservation's resolved active span. It is derived fresh
// from the raw strings on every evaluation and never persisted. The
// zero value is invalid.
type Window struct {
	Start time.Time
	End   time.Time
	Valid bool
}

// Result is one evaluation of a window against a reference instant.
type Result struct {
	State     State
	Remaining time.Duration
	Text      string
}

// Parse resolves a window from raw date and time strings. A window is
// well-formed only if the date and both times each match one of the
// accepted shapes; anything else yields an invalid window, never an
// error. If the end falls before the start the window crosses midnight
// and the end is advanced by one day.
func Parse(date, startTime, endTime string) Window {
	day, ok := parseDate(date)
	if !ok {
		return Window{}
	}
	start, ok := parseTimeOfDay(startTime)
	if !ok {
		return Window{}
	}
	end, ok := parseTimeOfDay(endTime)
	if !ok {
		return Window{}
	}

	startAt := combine(day, start)
	endAt := combine(day, end)
	if endAt.Before(startAt) {
		endAt = endAt.Add(24 * time.Hour)
	}
	return Window{Start: startAt, End: endAt, Valid: true}
}

// ParseAllDay resolves a window spanning the whole calendar date,
// ending at 23:59:59. Used for reservation types where only the date
// is meaningful.
func ParseAllDay(date string) Window {
	day, ok := parseDate(date)
	if !ok {
		return Window{}
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC)
	return Window{Start: start, End: end, Valid: true}
}

// For resolves the window for a reservation record. Restaurant-type
// records are all-day bookings: their end is pinned to 23:59:59 of the
// reservation date and the fetched end-time field is ignored.
func For(r *models.Reservation) Window {
	if r.IsRestaurant() {
		return ParseAllDay(r.Date)
	}
	return Parse(r.Date, r.StartTime, r.EndTime)
}

// EvaluateAt classifies a window against the given instant. It is a
// pure function: the same window and instant always produce the same
// result, and invalid windows stay invalid.
func EvaluateAt(w Window, now time.Time) Result {
	if !w.Valid {
		return Result{State: StateInvalid, Text: TextInvalid}
	}
	diff := w.End.Sub(now)
	if diff <= 0 {
		return Result{State: StateExpired, Text: TextExpired}
	}
	return Result{State: StateActive, Remaining: diff, Text: FormatRemaining(diff)}
}

// FormatRemaining renders a remaining duration as "HHh MMmin SSs".
// Hours are unbounded: a 25-hour remainder renders as "25h", not as a
// day count.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02dh %02dmin %02ds", hours, minutes, seconds)
}

// Evaluator classifies reservations using an injected clock.
type Evaluator struct {
	clock Clock
}

// NewEvaluator creates an evaluator. A nil clock means system time.
func NewEvaluator(clock Clock) *Evaluator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Evaluator{clock: clock}
}

// Evaluate resolves and classifies a reservation record at the
// evaluator's current time.
func (e *Evaluator) Evaluate(r *models.Reservation) Result {
	return EvaluateAt(For(r), e.clock.Now())
}

// Now exposes the evaluator's clock reading.
func (e *Evaluator) Now() time.Time {
	return e.clock.Now()
}
