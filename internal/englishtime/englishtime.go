// Package englishtime renders and parses human-readable interval
// strings ("2 days, 3 hours"), grounded on
// _examples/original_source/english.py's describe_interval/
// parse_interval. Used for displaying and configuring poll intervals
// and article lifetimes (spec.md §4.D).
package englishtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned by ParseInterval when the input isn't a
// comma-separated list of "<number> <unit>" terms.
var ErrInvalidFormat = errors.New("englishtime: invalid interval format")

// unitSeconds gives the absolute number of seconds in one of each unit,
// matching spec.md §4.D's table exactly (a year is simplified to 365
// days, as in the original).
var unitSeconds = []struct {
	name    string
	seconds int64
}{
	{"year", 31536000},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
	{"second", 1},
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// DescribeInterval renders seconds as a comma-joined, largest-unit-first
// English phrase ("1 day, 2 hours"), via the same cascading divmod
// english.py uses: seconds -> minutes -> hours -> days -> years, at 60,
// 60, 24, 365 respectively. Zero-valued units are omitted. An interval
// of exactly zero seconds renders as "0 seconds".
func DescribeInterval(totalSeconds int64) string {
	if totalSeconds == 0 {
		return "0 seconds"
	}
	neg := totalSeconds < 0
	if neg {
		totalSeconds = -totalSeconds
	}

	minutes, secs := totalSeconds/60, totalSeconds%60
	hours, minutes := minutes/60, minutes%60
	days, hours := hours/24, hours%24
	years, days := days/365, days%365

	var parts []string
	if years > 0 {
		parts = append(parts, pluralize(years, "year"))
	}
	if days > 0 {
		parts = append(parts, pluralize(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, pluralize(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, pluralize(minutes, "minute"))
	}
	if secs > 0 {
		parts = append(parts, pluralize(secs, "second"))
	}

	out := strings.Join(parts, ", ")
	if neg {
		out = "-" + out
	}
	return out
}

func singular(unit string) string {
	unit = strings.ToLower(unit)
	return strings.TrimSuffix(unit, "s")
}

// ParseInterval parses a comma-separated list of "<number> <unit>"
// terms (unit singular or plural, e.g. "2 days, 3 hours") back into a
// duration in seconds, the inverse of DescribeInterval (spec.md §8 P3:
// ParseInterval(DescribeInterval(n)) == n for every non-negative n).
func ParseInterval(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidFormat
	}
	terms := strings.Split(s, ",")
	var total int64
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			return 0, ErrInvalidFormat
		}
		fields := strings.Fields(term)
		if len(fields) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, term)
		}
		n, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, term)
		}
		unit := singular(fields[1])
		var matched bool
		for _, u := range unitSeconds {
			if u.name == unit {
				total += n * u.seconds
				matched = true
				break
			}
		}
		if !matched {
			return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidFormat, fields[1])
		}
	}
	return total, nil
}
