package gpio

import (
	"fmt"

	"github.com/moffa90/go-hateep/errcode"
)

// Drive is the bank drive strength code, bits [3:0] of the bank_drive byte.
type Drive uint8

// Drive strength codes. 9-15 are reserved.
const (
	// DriveDefault leaves the drive strength unchanged
	DriveDefault Drive = iota
	Drive2mA
	Drive4mA
	Drive6mA
	Drive8mA
	Drive10mA
	Drive12mA
	Drive14mA
	Drive16mA
)

var driveNames = []string{"default", "2mA", "4mA", "6mA", "8mA", "10mA", "12mA", "14mA", "16mA"}

// Valid reports whether d is a defined drive code.
func (d Drive) Valid() bool { return int(d) < len(driveNames) }

func (d Drive) String() string { return enumString(driveNames, uint8(d)) }

// MarshalText implements encoding.TextMarshaler.
func (d Drive) MarshalText() ([]byte, error) { return enumMarshal("drive", driveNames, uint8(d)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Drive) UnmarshalText(text []byte) error {
	v, err := enumParse("drive", driveNames, text)
	*d = Drive(v)
	return err
}

// Slew is the bank slew rate code, bits [5:4] of the bank_drive byte.
type Slew uint8

// Slew codes. 3 is reserved.
const (
	SlewDefault Slew = iota
	SlewRateLimiting
	SlewNoLimit
)

var slewNames = []string{"default", "rate_limiting", "no_limit"}

// Valid reports whether s is a defined slew code.
func (s Slew) Valid() bool { return int(s) < len(slewNames) }

func (s Slew) String() string { return enumString(slewNames, uint8(s)) }

// MarshalText implements encoding.TextMarshaler.
func (s Slew) MarshalText() ([]byte, error) { return enumMarshal("slew", slewNames, uint8(s)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Slew) UnmarshalText(text []byte) error {
	v, err := enumParse("slew", slewNames, text)
	*s = Slew(v)
	return err
}

// Hysteresis is the bank hysteresis code, bits [7:6] of the bank_drive byte.
type Hysteresis uint8

// Hysteresis codes. 3 is reserved.
const (
	HysteresisDefault Hysteresis = iota
	HysteresisDisable
	HysteresisEnable
)

var hysteresisNames = []string{"default", "disable", "enable"}

// Valid reports whether h is a defined hysteresis code.
func (h Hysteresis) Valid() bool { return int(h) < len(hysteresisNames) }

func (h Hysteresis) String() string { return enumString(hysteresisNames, uint8(h)) }

// MarshalText implements encoding.TextMarshaler.
func (h Hysteresis) MarshalText() ([]byte, error) {
	return enumMarshal("hysteresis", hysteresisNames, uint8(h))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hysteresis) UnmarshalText(text []byte) error {
	v, err := enumParse("hysteresis", hysteresisNames, text)
	*h = Hysteresis(v)
	return err
}

// BackPower is the back-power capability, bits [1:0] of the power byte.
type BackPower uint8

// Back-power codes. 3 is reserved.
const (
	// BackPowerNone means the board does not back power the host
	BackPowerNone BackPower = iota

	// BackPower1A3 means the board supplies up to 1.3A
	BackPower1A3

	// BackPower2A means the board supplies up to 2A; high-current USB mode is implied
	BackPower2A
)

var backPowerNames = []string{"none", "1.3A", "2A"}

// Valid reports whether b is a defined back-power code.
func (b BackPower) Valid() bool { return int(b) < len(backPowerNames) }

func (b BackPower) String() string { return enumString(backPowerNames, uint8(b)) }

// Fsel is the pin function select, the FSEL register encoding.
type Fsel uint8

// Function select codes. The alternate functions are not numbered in order.
const (
	FselInput  Fsel = 0
	FselOutput Fsel = 1
	FselAlt5   Fsel = 2
	FselAlt4   Fsel = 3
	FselAlt0   Fsel = 4
	FselAlt1   Fsel = 5
	FselAlt2   Fsel = 6
	FselAlt3   Fsel = 7
)

var fselNames = []string{"input", "output", "alt5", "alt4", "alt0", "alt1", "alt2", "alt3"}

// Valid reports whether f fits the 3-bit field. Every 3-bit value is defined.
func (f Fsel) Valid() bool { return int(f) < len(fselNames) }

func (f Fsel) String() string { return enumString(fselNames, uint8(f)) }

// MarshalText implements encoding.TextMarshaler.
func (f Fsel) MarshalText() ([]byte, error) { return enumMarshal("fsel", fselNames, uint8(f)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fsel) UnmarshalText(text []byte) error {
	v, err := enumParse("fsel", fselNames, text)
	*f = Fsel(v)
	return err
}

// Pull is the pin pull type, bits [6:5] of a pin byte.
type Pull uint8

// Pull codes.
const (
	PullDefault Pull = iota
	PullUp
	PullDown
	PullNone
)

var pullNames = []string{"default", "up", "down", "none"}

// Valid reports whether p fits the 2-bit field.
func (p Pull) Valid() bool { return int(p) < len(pullNames) }

func (p Pull) String() string { return enumString(pullNames, uint8(p)) }

// MarshalText implements encoding.TextMarshaler.
func (p Pull) MarshalText() ([]byte, error) { return enumMarshal("pull", pullNames, uint8(p)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pull) UnmarshalText(text []byte) error {
	v, err := enumParse("pull", pullNames, text)
	*p = Pull(v)
	return err
}

func enumString(names []string, v uint8) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("reserved(%d)", v)
}

func enumMarshal(field string, names []string, v uint8) ([]byte, error) {
	if int(v) >= len(names) {
		return nil, errcode.Field(errcode.Schema, field, "reserved value %d", v)
	}
	return []byte(names[v]), nil
}

func enumParse(field string, names []string, text []byte) (uint8, error) {
	s := string(text)
	for i, name := range names {
		if name == s {
			return uint8(i), nil
		}
	}
	return 0, errcode.Field(errcode.Schema, field, "unknown variant %q, expected one of %q", s, names)
}
