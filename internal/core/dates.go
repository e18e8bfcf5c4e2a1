package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateKeyFmt is the canonical zero-padded YYYY-MM-DD layout used for every
// date key in the system: storage keys, remote file names, CLI arguments.
const DateKeyFmt = "2006-01-02"

const displayFmt = "January 2, 2006"

// ErrInvalidDateKey is returned when a string cannot be split into numeric
// year, month and day components.
var ErrInvalidDateKey = errors.New("invalid date key")

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FormatDate formats a time.Time as a canonical zero-padded date key.
func FormatDate(t time.Time) string {
	return t.Format(DateKeyFmt)
}

// Today returns the current local date as a date key.
func Today() string {
	return FormatDate(time.Now())
}

// IsDateKey reports whether s is a well-formed YYYY-MM-DD date key.
// This is a shape check only; component ranges are not validated.
func IsDateKey(s string) bool {
	return dateKeyPattern.MatchString(s)
}

// ParseDateKey splits a date key on "-" and parses the components as
// integers. Fails with ErrInvalidDateKey when fewer than three components
// are present or any component is non-numeric. Component ranges are not
// validated; callers on production paths validate shape with IsDateKey.
func ParseDateKey(key string) (year, month, day int, err error) {
	parts := strings.Split(key, "-")
	if len(parts) < 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	var nums [3]int
	for i := 0; i < 3; i++ {
		n, convErr := strconv.Atoi(parts[i])
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// dateAt anchors a date key at local midnight.
func dateAt(key string) (time.Time, error) {
	year, month, day, err := ParseDateKey(key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// DisplayDate renders a date key in long form, e.g. "January 1, 2025".
// Malformed keys are returned unchanged.
func DisplayDate(key string) string {
	t, err := dateAt(key)
	if err != nil {
		return key
	}
	return t.Format(displayFmt)
}

// AddDays shifts a date key by n calendar days, carrying across month and
// year boundaries. n may be negative.
func AddDays(key string, n int) (string, error) {
	t, err := dateAt(key)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// SubtractDays shifts a date key backwards by n calendar days.
func SubtractDays(key string, n int) (string, error) {
	return AddDays(key, -n)
}
