package share

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxExpiration is the administratively configured maximum lifetime of a
// share. A Value of 0 disables the cap.
type MaxExpiration struct {
	Value int
	Unit  string
}

// Active reports whether the cap is enforced
func (m MaxExpiration) Active() bool {
	return m.Value != 0
}

// ParseRelativeDate resolves a relative expiration spec of the form
// "<integer>-<unit>" into an absolute instant relative to now. The literal
// "never" resolves to nil, meaning the share never expires.
func ParseRelativeDate(spec string, now time.Time) (*time.Time, error) {
	if spec == "never" {
		return nil, nil
	}

	value, unit, ok := strings.Cut(spec, "-")
	if !ok {
		return nil, fmt.Errorf("invalid expiration %q: expected <number>-<unit> or never", spec)
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid expiration %q: %q is not a positive number", spec, value)
	}

	resolved, err := addUnit(now, n, unit)
	if err != nil {
		return nil, fmt.Errorf("invalid expiration %q: %w", spec, err)
	}
	return &resolved, nil
}

// EnforceMaxExpiration rejects a resolved expiration that exceeds the
// configured cap. A nil expiration (never) always exceeds an active cap.
// Callers skip this check when a reverse share invitation supplies the
// expiration, because that expiration is authoritative.
func EnforceMaxExpiration(expiresAt *time.Time, cap MaxExpiration, now time.Time) error {
	if !cap.Active() {
		return nil
	}
	if expiresAt == nil {
		return ErrExpirationTooLong
	}

	limit, err := addUnit(now, cap.Value, cap.Unit)
	if err != nil {
		return fmt.Errorf("invalid max expiration config: %w", err)
	}
	if expiresAt.After(limit) {
		return ErrExpirationTooLong
	}
	return nil
}

// addUnit adds n units to t using calendar arithmetic for calendar units,
// matching what a date library would do
func addUnit(t time.Time, n int, unit string) (time.Time, error) {
	switch unit {
	case "minutes":
		return t.Add(time.Duration(n) * time.Minute), nil
	case "hours":
		return t.Add(time.Duration(n) * time.Hour), nil
	case "days":
		return t.AddDate(0, 0, n), nil
	case "weeks":
		return t.AddDate(0, 0, 7*n), nil
	case "months":
		return t.AddDate(0, n, 0), nil
	case "years":
		return t.AddDate(n, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown unit %q", unit)
	}
}
