package membership

import (
	"fmt"

	"github.com/mansoorceksport/gymcard/internal/ethiopian"
)

// RenewalStart calculates the registration date of a renewed membership using stacking logic.
// If the current membership is still running, the new one starts on the current expiry.
// If it has lapsed, or the stored dates cannot be read, the new one starts today.
// The result is an Ethiopian "YYYY-MM-DD" date.
func (c *Calculator) RenewalStart(registerDate, duration string) (string, error) {
	today := c.Today()

	if p, err := c.Period(registerDate, duration); err == nil && p.Expiry.After(today) {
		// Stack: continue from the current expiry
		return ethiopian.GregorianToEthiopian(p.Expiry)
	}

	// Fresh start
	start, err := ethiopian.GregorianToEthiopian(today)
	if err != nil {
		return "", fmt.Errorf("today as ethiopian date: %w", err)
	}
	return start, nil
}
