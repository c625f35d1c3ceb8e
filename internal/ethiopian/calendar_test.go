package ethiopian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLeapYear(t *testing.T) {
	// Years whose Pagume has six days, from the civil calendar.
	leap := map[int]bool{
		1999: true, 2003: true, 2007: true, 2011: true, 2015: true, 2019: true, 2023: true,
	}

	for year := 1996; year <= 2024; year++ {
		assert.Equal(t, leap[year], IsLeapYear(year), "IsLeapYear(%d)", year)
	}

	// The Gregorian divisibility rule gets these wrong.
	assert.True(t, IsLeapYear(2015))
	assert.False(t, IsLeapYear(2016))
	assert.False(t, IsLeapYear(2012))
}

func TestIsLeapYear_MatchesNewYearShift(t *testing.T) {
	// A leap year is exactly one whose successor starts a day later in September.
	for year := MinYear; year < MaxYear; year++ {
		gap := int(NewYear(year+1).Sub(NewYear(year)) / day)
		assert.Equal(t, DaysInYear(year), gap, "year %d", year)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 30, DaysInMonth(2016, 1))
	assert.Equal(t, 30, DaysInMonth(2016, 12))
	assert.Equal(t, 5, DaysInMonth(2016, Pagume))
	assert.Equal(t, 6, DaysInMonth(2015, Pagume))
	assert.Equal(t, 0, DaysInMonth(2016, 0))
	assert.Equal(t, 0, DaysInMonth(2016, 14))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2016-01-05")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2016, Month: 1, Day: 5}, d)
	assert.Equal(t, "2016-01-05", d.String())

	d, err = ParseDate(" 2015-13-6 ")
	require.NoError(t, err)
	assert.Equal(t, "2015-13-06", d.String())

	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = ParseDate("2016-13-06")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseDate_RejectsSignsAndNonDigits(t *testing.T) {
	for _, in := range []string{
		"+2016-01-01",
		"2016-+1-01",
		"2016-01-+1",
		"2016-01--1",
		"2016--01-01",
		"2016-01-",
		"2016- 1-01",
		"2016-01-0x1",
		"２０１６-01-01",
	} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrInvalidFormat, "%q", in)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "N/A"},
		{"2016-01-05", "2016-መስከረም-05"},
		{"2016-04-28", "2016-ታህሳስ-28"},
		{"2016-12-30", "2016-ነሐሴ-30"},
		{"2015-13-06", "2015-ጳጉሜን-06"},
		{"2018-03-10T00:00:00.000", "2018-ህዳር-10"},
		{"garbage", "garbage"},
		{"2016-14-01", "2016-14-01"},
		{"2016-xx-01", "2016-xx-01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in))
		})
	}
}

func TestMonthName(t *testing.T) {
	name, ok := MonthName(1)
	assert.True(t, ok)
	assert.Equal(t, "መስከረም", name)

	latin, ok := MonthNameLatin(Pagume)
	assert.True(t, ok)
	assert.Equal(t, "Pagume", latin)

	_, ok = MonthName(0)
	assert.False(t, ok)
	_, ok = MonthNameLatin(14)
	assert.False(t, ok)
}
