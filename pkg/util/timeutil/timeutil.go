// Package timeutil holds calendar helpers evaluated in an explicit location.
//
// Instants are stored in UTC. A Zone is only applied when a calendar day has to
// be computed (today, month-to-date, end of day) or when a timestamp is
// rendered for display.
package timeutil

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the accepted layout for date-only inputs.
const DateLayout = "2006-01-02"

// ErrInvalidTimestamp is returned for inputs that match no accepted layout.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Zone binds calendar computations to a location.
type Zone struct {
	loc *time.Location
}

// NewZone loads the named IANA location. An empty name means UTC.
func NewZone(name string) (Zone, error) {
	if strings.TrimSpace(name) == "" {
		return Zone{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, err
	}
	return Zone{loc: loc}, nil
}

// FixedZone is mainly useful in tests.
func FixedZone(name string, offsetSeconds int) Zone {
	return Zone{loc: time.FixedZone(name, offsetSeconds)}
}

// UTC returns the UTC zone.
func UTC() Zone {
	return Zone{loc: time.UTC}
}

// Location returns the bound location, defaulting to UTC.
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// In converts t for display.
func (z Zone) In(t time.Time) time.Time {
	return t.In(z.Location())
}

// InPtr converts an optional timestamp for display.
func (z Zone) InPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := z.In(*t)
	return &v
}

// StartOfDay returns midnight of t's calendar day.
func (z Zone) StartOfDay(t time.Time) time.Time {
	local := t.In(z.Location())
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, z.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func (z Zone) EndOfDay(t time.Time) time.Time {
	return z.StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfMonth returns midnight of the first day of t's month.
func (z Zone) StartOfMonth(t time.Time) time.Time {
	local := t.In(z.Location())
	y, m, _ := local.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, z.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func (z Zone) SameDay(a, b time.Time) bool {
	return z.StartOfDay(a).Equal(z.StartOfDay(b))
}

// CompareDay returns -1, 0 or 1 comparing the calendar days of a and b.
func (z Zone) CompareDay(a, b time.Time) int {
	da, db := z.StartOfDay(a), z.StartOfDay(b)
	switch {
	case da.Before(db):
		return -1
	case da.After(db):
		return 1
	default:
		return 0
	}
}

// Parse accepts RFC3339 timestamps or bare dates. Bare dates resolve to
// midnight in the zone.
func (z Zone) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(DateLayout, value, z.Location()); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, ErrInvalidTimestamp
}

// ParseOptional parses value when non-empty.
func (z Zone) ParseOptional(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := z.Parse(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
