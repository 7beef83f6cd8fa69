// Package nightly interprets release-controller tag names: it recovers the
// build timestamp embedded in a tag, renders build ages, and shortens tags
// for display.
package nightly

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// UnknownAge is reported when a tag name carries no usable timestamp.
const UnknownAge = "unknown"

const tagTimeLayout = "2006-01-02 15:04:05"

// Matches the YYYY-MM-DD-HHMMSS suffix of names like 4.15.0-0.nightly-2025-12-01-161151.
var tagTimestampRegex = regexp.MustCompile(`\d{4}-\d{2}-\d{2}-\d{6}`)

// ParseTagTimestamp extracts the UTC build time embedded in a tag name.
// It returns false when the name has no YYYY-MM-DD-HHMMSS substring or when
// the substring is not a valid calendar time (for example day 32 or year 0000).
func ParseTagTimestamp(tagName string) (time.Time, bool) {
	match := tagTimestampRegex.FindString(tagName)
	if match == "" {
		return time.Time{}, false
	}

	formatted := fmt.Sprintf("%s %s:%s:%s", match[:10], match[11:13], match[13:15], match[15:17])
	ts, err := time.ParseInLocation(tagTimeLayout, formatted, time.UTC)
	if err != nil || ts.Year() < 1 {
		return time.Time{}, false
	}
	return ts, true
}

// FormatAge renders the time elapsed between tagTime and now.
// Ages of a day or more are "<days>d <hours>h", shorter ones are fractional
// hours with one decimal, e.g. "2.6h". The age is counted in calendar days
// so tags centuries old are not clamped to the range of time.Duration.
func FormatAge(tagTime, now time.Time) string {
	tagTime, now = tagTime.UTC(), now.UTC()

	days := dayNumber(now) - dayNumber(tagTime)
	rem := sinceMidnight(now) - sinceMidnight(tagTime)
	if rem < 0 {
		days--
		rem += 24 * time.Hour
	}

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, int64(rem/time.Hour))
	}
	return fmt.Sprintf("%.1fh", float64(days)*24+rem.Hours())
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayNumber counts days since the Unix epoch; t must be in UTC.
func dayNumber(t time.Time) int64 {
	return midnight(t).Unix() / 86400
}

func sinceMidnight(t time.Time) time.Duration {
	return t.Sub(midnight(t))
}

// DisplayTag returns the trailing YYYY-MM-DD-HHMMSS portion of a tag name,
// i.e. its last four dash-separated segments. Names with fewer than four
// segments are returned unchanged.
func DisplayTag(tagName string) string {
	parts := strings.Split(tagName, "-")
	if len(parts) < 4 {
		return tagName
	}
	return strings.Join(parts[len(parts)-4:], "-")
}
