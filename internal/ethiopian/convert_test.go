package ethiopian

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func gdate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// jdnFromEthiopian is the arithmetic Julian Day Number of an Ethiopian date,
// independent of the new-year anchor used by ToGregorian.
func jdnFromEthiopian(d Date) int {
	const epoch = 1723856
	return epoch + 365 + 365*(d.Year-1) + d.Year/4 + 30*d.Month + d.Day - 31
}

func jdnFromGregorian(t time.Time) int {
	const unixEpochJDN = 2440588
	return unixEpochJDN + int(t.Sub(gdate(1970, time.January, 1))/(24*time.Hour))
}

func TestEthiopianToGregorian(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"new year after leap year", "2016-01-01", gdate(2023, time.September, 12)},
		{"new year after common year", "2015-01-01", gdate(2022, time.September, 11)},
		{"sixth day of leap pagume", "2015-13-06", gdate(2023, time.September, 11)},
		{"last day of common pagume", "2016-13-05", gdate(2024, time.September, 10)},
		{"new year 2017", "2017-01-01", gdate(2024, time.September, 11)},
		{"genna after a leap year", "2016-04-28", gdate(2024, time.January, 7)},
		{"timket after a leap year", "2016-05-11", gdate(2024, time.January, 20)},
		{"crosses gregorian feb 29", "2016-06-23", gdate(2024, time.March, 2)},
		{"new year 2018", "2018-01-01", gdate(2025, time.September, 11)},
		{"new year 2012", "2012-01-01", gdate(2019, time.September, 12)},
		{"millennium", "2000-01-01", gdate(2007, time.September, 12)},
		{"first supported year", "1893-01-01", gdate(1900, time.September, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EthiopianToGregorian(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "EthiopianToGregorian(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		})
	}
}

func TestEthiopianToGregorian_Errors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"", ErrMissingInput},
		{"   ", ErrMissingInput},
		{"2016/01/01", ErrInvalidFormat},
		{"2016-01", ErrInvalidFormat},
		{"2016-1a-01", ErrInvalidFormat},
		{"2016-01-01T00:00:00", ErrInvalidFormat},
		{"2016-00-10", ErrInvalidFormat},
		{"2016-14-01", ErrInvalidFormat},
		{"2016-01-31", ErrInvalidFormat},
		{"2016-13-06", ErrInvalidFormat},
		{"1800-01-01", ErrUnsupportedYear},
		{"2200-01-01", ErrUnsupportedYear},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := EthiopianToGregorian(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestGregorianToEthiopian(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{gdate(2023, time.September, 11), "2015-13-06"},
		{gdate(2023, time.September, 12), "2016-01-01"},
		{gdate(2024, time.February, 29), "2016-06-21"},
		{gdate(2024, time.January, 1), "2016-04-22"},
		{gdate(2025, time.September, 10), "2017-13-05"},
		{gdate(2025, time.October, 17), "2018-02-07"},
		{gdate(2026, time.October, 17), "2019-02-07"},
		{gdate(2007, time.September, 11), "1999-13-06"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := GregorianToEthiopian(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGregorian_IgnoresTimeOfDay(t *testing.T) {
	addis := time.FixedZone("EAT", 3*60*60)
	late := time.Date(2023, time.September, 12, 23, 30, 0, 0, addis)

	got, err := FromGregorian(late)
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2016, Month: 1, Day: 1}, got)
}

func TestFromGregorian_OutOfRange(t *testing.T) {
	_, err := FromGregorian(gdate(1899, time.January, 1))
	assert.ErrorIs(t, err, ErrUnsupportedYear)
}

func TestRoundTrip_EveryDayOfTwentyYears(t *testing.T) {
	for year := 2000; year <= 2020; year++ {
		for month := 1; month <= Pagume; month++ {
			for d := 1; d <= DaysInMonth(year, month); d++ {
				date := Date{Year: year, Month: month, Day: d}

				g, err := ToGregorian(date)
				require.NoError(t, err, date.String())

				back, err := FromGregorian(g)
				require.NoError(t, err, date.String())
				if back != date {
					t.Fatalf("round trip %s -> %s -> %s", date, g.Format("2006-01-02"), back)
				}
			}
		}
	}
}

func TestRoundTrip_ConsecutiveGregorianDays(t *testing.T) {
	// Every Gregorian day maps to the Ethiopian day after the previous one.
	start := NewYear(2000)
	prev, err := FromGregorian(start)
	require.NoError(t, err)

	for g := start.AddDate(0, 0, 1); g.Before(NewYear(2021)); g = g.AddDate(0, 0, 1) {
		cur, err := FromGregorian(g)
		require.NoError(t, err)

		want := Date{Year: prev.Year, Month: prev.Month, Day: prev.Day + 1}
		if want.Day > DaysInMonth(prev.Year, prev.Month) {
			want.Day = 1
			want.Month++
			if want.Month > Pagume {
				want.Month = 1
				want.Year++
			}
		}
		require.Equal(t, want, cur, "day after %s (%s)", prev, g.Format("2006-01-02"))
		prev = cur
	}
}

func drawDate(t *rapid.T) Date {
	year := rapid.IntRange(MinYear, MaxYear).Draw(t, "year")
	month := rapid.IntRange(1, Pagume).Draw(t, "month")
	d := rapid.IntRange(1, DaysInMonth(year, month)).Draw(t, "day")
	return Date{Year: year, Month: month, Day: d}
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		date := drawDate(t)

		g, err := ToGregorian(date)
		if err != nil {
			t.Fatalf("ToGregorian(%s): %v", date, err)
		}
		back, err := FromGregorian(g)
		if err != nil {
			t.Fatalf("FromGregorian(%s): %v", g.Format("2006-01-02"), err)
		}
		if back != date {
			t.Fatalf("round trip %s -> %s -> %s", date, g.Format("2006-01-02"), back)
		}
	})
}

func TestProperty_AgreesWithJulianDayNumber(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		date := drawDate(t)

		g, err := ToGregorian(date)
		if err != nil {
			t.Fatalf("ToGregorian(%s): %v", date, err)
		}
		if got, want := jdnFromGregorian(g), jdnFromEthiopian(date); got != want {
			t.Fatalf("%s -> %s: JDN %d, want %d", date, g.Format("2006-01-02"), got, want)
		}
	})
}

func TestProperty_DaysBetweenIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawDate(t).String()
		n, err := DaysBetween(s, s)
		if err != nil {
			t.Fatalf("DaysBetween(%s, %s): %v", s, s, err)
		}
		if n != 0 {
			t.Fatalf("DaysBetween(%s, %s) = %d, want 0", s, s, n)
		}
	})
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2016-13-05", "2017-01-01", 1},
		{"2015-13-01", "2016-01-01", 6},
		{"2016-01-01", "2016-02-01", 30},
		{"2016-01-01", "2017-01-01", 365},
		{"2015-01-01", "2016-01-01", 366},
		{"2016-02-01", "2016-01-01", -30},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got, err := DaysBetween(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DaysBetween("", "2016-01-01")
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestCeilDays(t *testing.T) {
	assert.Equal(t, 0, CeilDays(0))
	assert.Equal(t, 1, CeilDays(2*time.Hour+24*time.Minute))
	assert.Equal(t, 1, CeilDays(24*time.Hour))
	assert.Equal(t, 2, CeilDays(25*time.Hour))
	assert.Equal(t, -1, CeilDays(-25*time.Hour))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		in     string
		months int
		want   string
	}{
		{"2016-01-01", 1, "2016-02-01"},
		{"2016-01-01", 0, "2016-01-01"},
		{"2016-12-15", 1, "2017-01-15"},
		{"2016-05-30", 12, "2017-05-30"},
		{"2016-05-30", 25, "2018-06-30"},
		{"2016-13-03", 0, "2017-01-03"},
		{"2016-03-10", -5, "2016-01-10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := AddMonths(tt.in, tt.months)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := AddMonths("not-a-date", 1)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
