// Package membership computes membership expiry and remaining days from a member's
// Ethiopian registration date and free-form plan duration.
package membership

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mansoorceksport/gymcard/internal/domain"
)

// Unit is the calendar unit of a plan duration.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Plan lengths are counted in fixed days: a month is 30 days and a year 365.
var unitDays = map[Unit]int{
	UnitDay:   1,
	UnitWeek:  7,
	UnitMonth: 30,
	UnitYear:  365,
}

// maxPlanDays caps a plan at 100 fixed-length years.
const maxPlanDays = 100 * 365

var durationPattern = regexp.MustCompile(`^(\d+)\s*(day|week|month|year)s?$`)

// Plan is a parsed plan duration such as "2 Weeks".
type Plan struct {
	Count int  `json:"count"`
	Unit  Unit `json:"unit"`
}

// Days returns the plan length in days.
func (p Plan) Days() int {
	return p.Count * unitDays[p.Unit]
}

// ParsePlan parses "1 Month", "2 weeks", "30 Days", "1 Year" or a bare month count
// such as "3". Matching is case-insensitive and the plural "s" is optional.
func ParsePlan(s string) (Plan, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return Plan{}, domain.ErrMissingInput
	}

	var p Plan
	if n, err := strconv.Atoi(norm); err == nil && n >= 0 {
		p = Plan{Count: n, Unit: UnitMonth}
	} else {
		m := durationPattern.FindStringSubmatch(norm)
		if m == nil {
			return Plan{}, fmt.Errorf("%w: %q", domain.ErrUnrecognizedDurationFormat, s)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Plan{}, fmt.Errorf("%w: %q", domain.ErrUnrecognizedDurationFormat, s)
		}
		p = Plan{Count: n, Unit: Unit(m[2])}
	}

	// compared before multiplying so Days cannot overflow
	if p.Count > maxPlanDays/unitDays[p.Unit] {
		return Plan{}, fmt.Errorf("%w: %q exceeds %d days", domain.ErrUnrecognizedDurationFormat, s, maxPlanDays)
	}
	return p, nil
}

// ParseDurationToDays converts a plan duration string to a number of days.
func ParseDurationToDays(s string) (int, error) {
	p, err := ParsePlan(s)
	if err != nil {
		return 0, err
	}
	return p.Days(), nil
}
