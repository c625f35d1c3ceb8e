package ethiopian

import (
	"strconv"
	"strings"
)

var monthNames = [Pagume]string{
	"መስከረም", // Meskerem
	"ጥቅምት",  // Tikimt
	"ህዳር",   // Hidar
	"ታህሳስ",  // Tahsas
	"ጥር",    // Tir
	"የካቲት",  // Yekatit
	"መጋቢት",  // Megabit
	"ሚያዝያ",  // Miyazya
	"ግንቦት",  // Ginbot
	"ሰኔ",    // Sene
	"ሐምሌ",   // Hamle
	"ነሐሴ",   // Nehase
	"ጳጉሜን",  // Pagume
}

var monthNamesLatin = [Pagume]string{
	"Meskerem", "Tikimt", "Hidar", "Tahsas", "Tir", "Yekatit", "Megabit",
	"Miyazya", "Ginbot", "Sene", "Hamle", "Nehase", "Pagume",
}

// MonthName returns the Amharic name of an Ethiopian month (1-13).
func MonthName(month int) (string, bool) {
	if month < 1 || month > Pagume {
		return "", false
	}
	return monthNames[month-1], true
}

// MonthNameLatin returns the transliterated name of an Ethiopian month (1-13).
func MonthNameLatin(month int) (string, bool) {
	if month < 1 || month > Pagume {
		return "", false
	}
	return monthNamesLatin[month-1], true
}

// FormatDate renders "YYYY-MM-DD" as "YYYY-<MonthName>-DD" for display.
//
// Empty input yields "N/A". A trailing time portion ("T...") is ignored. Anything that
// cannot be read as a date is returned unchanged, so callers on display paths never have
// to handle an error. Pagume keeps its own name rather than being shown as month 12.
func FormatDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}

	dateOnly, _, _ := strings.Cut(s, "T")
	parts := strings.Split(dateOnly, "-")
	if len(parts) != 3 {
		return s
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return s
	}
	name, ok := MonthName(month)
	if !ok {
		return s
	}

	return parts[0] + "-" + name + "-" + parts[2]
}
