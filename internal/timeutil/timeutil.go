// Package timeutil parses the time expressions accepted by time_series
// generators: Go durations extended with day and week units, and instants
// given either as RFC3339 or relative to now.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

var longUnits = map[byte]time.Duration{
	'd': Day,
	'w': Week,
}

// ParseDuration accepts everything time.ParseDuration does plus a single
// integer count of days ("3d") or weeks ("2w").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	unit, ok := longUnits[s[len(s)-1]]
	if !ok || len(s) < 2 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(n) * unit, nil
}

// ParseRelativeTime resolves "now", an RFC3339 timestamp, or a signed
// offset from now such as "-7d" or "+90m".
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return time.Time{}, errors.New("empty time")
	case s == "now":
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	sign := s[0]
	if sign != '-' && sign != '+' {
		return time.Time{}, fmt.Errorf("time %q is neither RFC3339 nor a signed offset", s)
	}
	d, err := ParseDuration(s[1:])
	if err != nil {
		return time.Time{}, err
	}
	if sign == '-' {
		d = -d
	}
	return now.Add(d), nil
}
