// Package ethiopian converts civil dates between the Ethiopian and Gregorian calendars.
//
// The Ethiopian year has twelve 30-day months followed by Pagume, an epagomenal month of
// five days, or six in a leap year. Leap years are the years whose number leaves remainder
// 3 when divided by 4, i.e. the year right before a Gregorian leap year begins.
package ethiopian

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Pagume is the thirteenth, epagomenal month.
	Pagume = 13

	daysPerMonth = 30

	// MinYear and MaxYear bound the years for which the September 11/12 new-year anchor
	// holds (Gregorian 1900-09-11 through 2099-09-11).
	MinYear = 1893
	MaxYear = 2091

	// yearOffset is the difference between the Gregorian year in which an Ethiopian year
	// begins and the Ethiopian year number.
	yearOffset = 7
)

var (
	ErrInvalidFormat   = errors.New("invalid ethiopian date format, expected YYYY-MM-DD")
	ErrMissingInput    = errors.New("missing ethiopian date")
	ErrUnsupportedYear = errors.New("ethiopian year outside supported range")
)

// Date is an Ethiopian civil date.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// IsLeapYear reports whether the Ethiopian year has a six-day Pagume.
func IsLeapYear(year int) bool {
	// Go's % keeps the sign of the dividend, so normalize for years before the epoch.
	return ((year%4)+4)%4 == 3
}

// DaysInMonth returns the number of days in the given month of the Ethiopian year.
// It returns 0 for months outside 1-13.
func DaysInMonth(year, month int) int {
	switch {
	case month >= 1 && month <= 12:
		return daysPerMonth
	case month == Pagume && IsLeapYear(year):
		return 6
	case month == Pagume:
		return 5
	default:
		return 0
	}
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// ParseDate parses a "YYYY-MM-DD" Ethiopian date and validates its month and day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingInput
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	var fields [3]int
	for i, p := range parts {
		if !isDigits(p) {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		fields[i] = n
	}

	d := Date{Year: fields[0], Month: fields[1], Day: fields[2]}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// isDigits reports whether p is non-empty ASCII digits; Atoi alone accepts a sign.
func isDigits(p string) bool {
	if p == "" {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return false
		}
	}
	return true
}

// MustParseDate is like ParseDate but panics on error. Intended for tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Validate checks the month range and the day against the month's length.
func (d Date) Validate() error {
	if d.Month < 1 || d.Month > Pagume {
		return fmt.Errorf("%w: month %d out of range 1-13", ErrInvalidFormat, d.Month)
	}
	if limit := DaysInMonth(d.Year, d.Month); d.Day < 1 || d.Day > limit {
		return fmt.Errorf("%w: day %d out of range 1-%d for month %d", ErrInvalidFormat, d.Day, limit, d.Month)
	}
	return nil
}

// String returns the canonical "YYYY-MM-DD" form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// dayOfYear is the zero-based offset of the date from Meskerem 1.
func (d Date) dayOfYear() int {
	return (d.Month-1)*daysPerMonth + (d.Day - 1)
}

// civil truncates t to midnight UTC of its calendar date in t's own location.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d not in %d-%d", ErrUnsupportedYear, year, MinYear, MaxYear)
	}
	return nil
}
