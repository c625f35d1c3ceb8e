package ethiopian

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// NewYear returns the Gregorian date of Meskerem 1 of the given Ethiopian year.
//
// The new year falls on September 11, or on September 12 when the previous Ethiopian year
// was a leap year. Inside the supported range that is exactly the years followed by a
// Gregorian leap year.
func NewYear(year int) time.Time {
	d := 11
	if IsLeapYear(year - 1) {
		d = 12
	}
	return time.Date(year+yearOffset, time.September, d, 0, 0, 0, 0, time.UTC)
}

// ToGregorian converts an Ethiopian date to midnight UTC of the matching Gregorian day.
func ToGregorian(d Date) (time.Time, error) {
	if err := d.Validate(); err != nil {
		return time.Time{}, err
	}
	if err := checkYear(d.Year); err != nil {
		return time.Time{}, err
	}
	// Pagume starts at offset 360, right after the twelfth 30-day month.
	return NewYear(d.Year).AddDate(0, 0, d.dayOfYear()), nil
}

// EthiopianToGregorian parses a "YYYY-MM-DD" Ethiopian date and converts it.
func EthiopianToGregorian(s string) (time.Time, error) {
	d, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return ToGregorian(d)
}

// FromGregorian converts the calendar date of t (read in t's own location) to an
// Ethiopian date.
func FromGregorian(t time.Time) (Date, error) {
	g := civil(t)

	year := g.Year() - yearOffset
	anchor := NewYear(year)
	if g.Before(anchor) {
		year--
		anchor = NewYear(year)
	}
	if err := checkYear(year); err != nil {
		return Date{}, err
	}

	offset := int(g.Sub(anchor) / day)
	month := offset/daysPerMonth + 1
	dd := offset%daysPerMonth + 1

	if month > Pagume {
		month = Pagume
		dd = offset - 12*daysPerMonth + 1
	}
	if month == Pagume {
		if limit := DaysInMonth(year, Pagume); dd > limit {
			dd = limit
		}
	}

	return Date{Year: year, Month: month, Day: dd}, nil
}

// GregorianToEthiopian converts t and returns the canonical "YYYY-MM-DD" form.
func GregorianToEthiopian(t time.Time) (string, error) {
	d, err := FromGregorian(t)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// AddMonths adds whole months to an Ethiopian date string.
//
// Membership plans count 30-day months, so the day of month is kept as is and the month
// wraps after 12: the epagomenal month is never produced.
func AddMonths(s string, months int) (string, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}

	y, m := d.Year, d.Month+months
	for m > 12 {
		m -= 12
		y++
	}
	if m < 1 {
		m = 1
	}

	return fmt.Sprintf("%04d-%02d-%02d", y, m, d.Day), nil
}

// DaysBetween returns the number of days from a to b, rounding any partial day up.
// The result is negative when a is after b.
func DaysBetween(a, b string) (int, error) {
	from, err := EthiopianToGregorian(a)
	if err != nil {
		return 0, fmt.Errorf("start date: %w", err)
	}
	to, err := EthiopianToGregorian(b)
	if err != nil {
		return 0, fmt.Errorf("end date: %w", err)
	}
	return CeilDays(to.Sub(from)), nil
}

// CeilDays converts a duration to whole days, rounding up.
func CeilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
