// Package clock produces instants pinned to a configured fixed UTC offset and
// renders them the way log lines and log file names expect.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Layout is the ISO-8601 profile used for every rendered timestamp:
	// millisecond precision and an explicit offset, "+00:00" included.
	Layout     = "2006-01-02T15:04:05.000-07:00"
	DateLayout = "2006-01-02"

	utcDesignator = "Z"
	maxHours      = 23
	maxMinutes    = 59
)

// ErrInvalidOffset is returned for offsets that are not of the form ±HH:MM.
var ErrInvalidOffset = errors.New("invalid utc offset")

// Clock reads the current instant in a fixed zone, never the host's local one.
type Clock struct {
	Loc *time.Location
	now func() time.Time
}

// New returns a Clock for offset, e.g. "-03:00".
func New(offset string) (*Clock, error) {
	loc, err := ParseOffset(offset)
	if err != nil {
		return nil, err
	}
	return NewWithSource(loc, nil), nil
}

// NewWithSource returns a Clock reading instants from now. A nil now uses
// time.Now.
func NewWithSource(loc *time.Location, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{Loc: loc, now: now}
}

// Now returns the current instant in the clock's zone.
func (c *Clock) Now() time.Time { return c.now().In(c.Loc) }

// Offset returns the canonical ±HH:MM form of the clock's zone.
func (c *Clock) Offset() string { return c.Loc.String() }

// Format renders t in Layout. t is expected to already carry the clock's zone;
// use Clock.Now or In to get one.
func Format(t time.Time) string { return t.Format(Layout) }

// Date returns the YYYY-MM-DD portion of Format(t).
func Date(t time.Time) string { return t.Format(DateLayout) }

// In converts t to the clock's zone.
func (c *Clock) In(t time.Time) time.Time { return t.In(c.Loc) }

// ParseOffset parses a signed offset ("-03:00", "+0530", "+05", "Z") into a
// fixed zone named after its canonical ±HH:MM spelling.
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == utcDesignator || s == "z" {
		return time.FixedZone("+00:00", 0), nil
	}
	if len(s) < 3 || (s[0] != '+' && s[0] != '-') {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	body := strings.Replace(s[1:], ":", "", 1)
	var hh, mm string
	switch len(body) {
	case 2:
		hh, mm = body, "00"
	case 4:
		hh, mm = body[:2], body[2:]
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > maxHours {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > maxMinutes {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	secs := sign * (h*3600 + m*60)
	name := fmt.Sprintf("%c%02d:%02d", s[0], h, m)
	if secs == 0 {
		name = "+00:00"
	}
	return time.FixedZone(name, secs), nil
}
