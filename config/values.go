package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted end test date format.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD date and rejects impossible calendar dates.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local date.
func Today() Date {
	return DateOf(time.Now())
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	v, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MAC is a 48-bit hardware address.
type MAC [6]byte

// ParseMAC parses six hex octets separated by ':' or '-'. Mixed separators
// are rejected.
func ParseMAC(s string) (MAC, error) {
	return parseMAC(s, ":-")
}

// ParseColonMAC parses the XX:XX:XX:XX:XX:XX form only. Hex digits may be
// of either case.
func ParseColonMAC(s string) (MAC, error) {
	return parseMAC(s, ":")
}

func parseMAC(s, seps string) (MAC, error) {
	var m MAC
	if len(s) != 17 {
		return m, fmt.Errorf("invalid MAC address %q: expected 6 hex octets", s)
	}
	sep := s[2]
	if !strings.ContainsRune(seps, rune(sep)) {
		return m, fmt.Errorf("invalid MAC address %q: bad separator %q", s, sep)
	}
	for i := 0; i < 6; i++ {
		if i > 0 && s[3*i-1] != sep {
			return m, fmt.Errorf("invalid MAC address %q: inconsistent separators", s)
		}
		if _, err := hex.Decode(m[i:i+1], []byte(s[3*i:3*i+2])); err != nil {
			return m, fmt.Errorf("invalid MAC address %q: octet %d is not hex", s, i)
		}
	}
	return m, nil
}

// String returns the upper-case colon form.
func (m MAC) String() string {
	return strings.ToUpper(fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5]))
}

// MarshalText implements encoding.TextMarshaler.
func (m MAC) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MAC) UnmarshalText(text []byte) error {
	v, err := ParseMAC(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
