package membership

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mansoorceksport/gymcard/internal/ethiopian"
)

// Clock is the source of "today".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Badge is the membership state shown on the card.
type Badge string

const (
	BadgeNA      Badge = "N/A"
	BadgeActive  Badge = "ACTIVE"
	BadgeExpired Badge = "EXPIRED"
)

// Period is a membership derived from a stored registration date and plan.
// It is recomputed on every read and never persisted.
type Period struct {
	Start    ethiopian.Date `json:"start"`
	Duration string         `json:"duration"`
	PlanDays int            `json:"plan_days"`
	// Expiry is the first day the membership is no longer valid, midnight UTC.
	Expiry time.Time `json:"expiry"`
}

// ExpiryEthiopian returns the expiry as an Ethiopian date.
func (p Period) ExpiryEthiopian() (ethiopian.Date, error) {
	return ethiopian.FromGregorian(p.Expiry)
}

// Calculator computes membership periods as of the clock's current day.
type Calculator struct {
	clock Clock
}

// NewCalculator creates a calculator reading "today" from clock.
func NewCalculator(clock Clock) *Calculator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Calculator{clock: clock}
}

// Today returns midnight UTC of the clock's current calendar day.
func (c *Calculator) Today() time.Time {
	y, m, d := c.clock.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Period derives the membership period. The expiry is the Gregorian start advanced by the
// plan length in days.
func (c *Calculator) Period(registerDate, duration string) (Period, error) {
	start, err := ethiopian.ParseDate(registerDate)
	if err != nil {
		return Period{}, fmt.Errorf("register date: %w", err)
	}
	days, err := ParseDurationToDays(duration)
	if err != nil {
		return Period{}, fmt.Errorf("duration: %w", err)
	}
	g, err := ethiopian.ToGregorian(start)
	if err != nil {
		return Period{}, fmt.Errorf("register date: %w", err)
	}

	return Period{
		Start:    start,
		Duration: duration,
		PlanDays: days,
		Expiry:   g.AddDate(0, 0, days),
	}, nil
}

// Remaining returns the days left in p as of today, clamped to [0, p.PlanDays].
func (c *Calculator) Remaining(p Period) int {
	n := ethiopian.CeilDays(p.Expiry.Sub(c.Today()))
	if n > p.PlanDays {
		n = p.PlanDays
	}
	if n < 0 {
		n = 0
	}
	return n
}

// RemainingDays returns the days left on a membership, or nil when the registration date
// or duration is missing or cannot be parsed.
func (c *Calculator) RemainingDays(registerDate, duration string) *int {
	p, err := c.Period(registerDate, duration)
	if err != nil {
		return nil
	}
	n := c.Remaining(p)
	return &n
}

// Status maps a remaining-days figure to the card badge.
func Status(remaining *int) Badge {
	switch {
	case remaining == nil:
		return BadgeNA
	case *remaining > 0:
		return BadgeActive
	default:
		return BadgeExpired
	}
}

// RemainingText is the footer text of the card.
func RemainingText(remaining *int) string {
	switch Status(remaining) {
	case BadgeActive:
		return strconv.Itoa(*remaining) + " DAYS LEFT"
	case BadgeExpired:
		return "EXPIRED"
	default:
		return "N/A"
	}
}
