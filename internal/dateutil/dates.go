// =============================================================================
// gridcheck - Date Utilities
// =============================================================================
//
// Pure helpers for the heterogeneous date strings found in uploaded files.
// The canonical date form throughout gridcheck is MM/DD/YYYY; the auto-fix
// engine, the validation engine and the export shaper all go through here.
//
// ACCEPTED INPUTS (first match wins):
//   1. ISO / RFC datetimes     2024-01-05T10:30:00Z, Fri, 05 Jan 2024 ...
//   2. MM/DD/YYYY, M/D/YYYY    01/05/2024, 1/5/2024 (DD/MM only if first > 12)
//   3. YYYY-MM-DD, YYYY/MM/DD  2024-01-05, 2024/1/5
//   4. DD-MMM-YYYY             05-Jan-2024, 5-January-2024
//   5. Month DD, YYYY          January 5, 2024
//   6. MM-DD-YYYY              01-05-2024
//   7. M/D/YY                  1/5/24 (YY > 50 => 19YY, else 20YY)
//
// =============================================================================

package dateutil

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when no accepted pattern matches, or the
// matched components do not form a real calendar date.
var ErrInvalidDate = errors.New("invalid date")

// CanonicalLayout is the time layout of the canonical MM/DD/YYYY form.
const CanonicalLayout = "01/02/2006"

// nativeLayouts are tried first, in order.
var nativeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	"Mon Jan 2 2006",
	"Mon Jan 02 2006",
}

var (
	reSlashMDY   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reYMD        = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	reDayMonYear = regexp.MustCompile(`^(\d{1,2})[-\s]([A-Za-z]+)\.?[-\s](\d{4})$`)
	reMonDayYear = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
	reDashMDY    = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	reShortMDY   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Parse converts s to a date at UTC midnight.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	for _, layout := range nativeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	if m := reSlashMDY.FindStringSubmatch(s); m != nil {
		first, second, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if first > 12 && second <= 12 {
			return build(year, second, first)
		}
		return build(year, first, second)
	}

	if m := reYMD.FindStringSubmatch(s); m != nil {
		return build(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	if m := reDayMonYear.FindStringSubmatch(s); m != nil {
		month, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, ErrInvalidDate
		}
		return build(atoi(m[3]), int(month), atoi(m[1]))
	}

	if m := reMonDayYear.FindStringSubmatch(s); m != nil {
		month, ok := monthNames[strings.ToLower(m[1])]
		if !ok {
			return time.Time{}, ErrInvalidDate
		}
		return build(atoi(m[3]), int(month), atoi(m[2]))
	}

	if m := reDashMDY.FindStringSubmatch(s); m != nil {
		return build(atoi(m[3]), atoi(m[1]), atoi(m[2]))
	}

	if m := reShortMDY.FindStringSubmatch(s); m != nil {
		yy := atoi(m[3])
		year := 2000 + yy
		if yy > 50 {
			year = 1900 + yy
		}
		return build(year, atoi(m[1]), atoi(m[2]))
	}

	return time.Time{}, ErrInvalidDate
}

// IsDate reports whether s parses as a date.
func IsDate(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Format renders d as MM/DD/YYYY.
func Format(d time.Time) string {
	return d.Format(CanonicalLayout)
}

// Standardize rewrites s to MM/DD/YYYY, or returns s unchanged when it does
// not parse.
func Standardize(s string) string {
	d, err := Parse(s)
	if err != nil {
		return s
	}
	return Format(d)
}

// build validates the components and rejects impossible pairs such as Feb 30.
func build(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, ErrInvalidDate
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// =============================================================================
// TIME OF DAY
// =============================================================================

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"3:04:05PM",
	"3:04 pm",
	"3:04pm",
}

// IsTime reports whether s is a time of day such as 14:30 or 2:30 PM.
func IsTime(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
