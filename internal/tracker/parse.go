package tracker

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rewired-gh/putcall/internal/models"
)

// parseLeadingInt reads a base-10 integer from the start of s, after
// optional whitespace and sign, and ignores whatever follows the digits:
// "42abc" is 42, "3.9" is 3, "abc" is an error. Values beyond
// models.MaxReading are an error.
func parseLeadingInt(s string) (int64, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, ErrNotNumeric
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || !inRange(v) {
		return 0, ErrNotNumeric
	}
	return v, nil
}

func inRange(v int64) bool {
	return v >= -models.MaxReading && v <= models.MaxReading
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var clockLayouts = []string{
	models.TimeLayout,
	"03:04 PM",
	"3:04 PM",
}

// entryTime resolves when an entry was captured. Entries written by this
// package carry a timestamp; older records only have a clock string, which
// is taken as its most recent occurrence at or before now.
func entryTime(e models.Entry, now time.Time, loc *time.Location) (time.Time, bool) {
	if e.Timestamp != nil {
		return *e.Timestamp, true
	}
	s := strings.TrimSpace(e.Time)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range clockLayouts {
		c, err := time.Parse(layout, strings.ToUpper(s))
		if err != nil {
			continue
		}
		local := now.In(loc)
		t := time.Date(local.Year(), local.Month(), local.Day(), c.Hour(), c.Minute(), 0, 0, loc)
		if t.After(now) {
			t = t.AddDate(0, 0, -1)
		}
		return t, true
	}
	return time.Time{}, false
}
