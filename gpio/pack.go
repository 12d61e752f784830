// Package gpio packs and unpacks the GPIO map atom payloads.
//
// A bank payload is two control bytes followed by one byte per pin:
//
//	[BANK_DRIVE][POWER][PIN 0][PIN 1]...[PIN n-1]
//
// Pins that are not configured are written as zero (is_used=0, everything at
// default), which tells the bootloader to leave them untouched.
package gpio

import (
	"fmt"

	"github.com/moffa90/go-hateep/errcode"
)

// Bank selects a GPIO bank.
type Bank int

const (
	// Bank0 covers GPIO 0-27 and is stored in the gpio map atom
	Bank0 Bank = iota

	// Bank1 covers GPIO 28-45 and is stored in the bank 1 gpio map atom
	Bank1
)

// Pin counts per bank.
const (
	Bank0Pins = 28
	Bank1Pins = 18

	// ControlBytes is the bank_drive and power prefix of every bank payload
	ControlBytes = 2
)

// ReservedPins are used for the ID EEPROM bus and may not be configured.
var ReservedPins = []int{0, 1}

// FirstPin returns the GPIO number of the first pin in the bank.
func (b Bank) FirstPin() int {
	if b == Bank1 {
		return Bank0Pins
	}
	return 0
}

// NumPins returns the number of pins in the bank.
func (b Bank) NumPins() int {
	if b == Bank1 {
		return Bank1Pins
	}
	return Bank0Pins
}

// PayloadSize returns the packed size of the bank in bytes.
func (b Bank) PayloadSize() int {
	return ControlBytes + b.NumPins()
}

// Valid reports whether b is Bank0 or Bank1.
func (b Bank) Valid() bool {
	return b == Bank0 || b == Bank1
}

func (b Bank) String() string {
	return fmt.Sprintf("bank%d", int(b))
}

// BankSettings are the bank-wide electrical settings.
type BankSettings struct {
	Drive      Drive
	Slew       Slew
	Hysteresis Hysteresis
	BackPower  BackPower
}

// PinSetting configures one GPIO. Pin is the global GPIO number.
type PinSetting struct {
	Pin  int
	Fsel Fsel
	Pull Pull
}

// Config returns the packed byte for a used pin.
func (p PinSetting) Config() PinConfig {
	return NewPinConfig(p.Fsel, p.Pull, true)
}

// Pack builds the payload for bank. Pins not listed are left unused.
//
// A pin listed twice is accepted only if both entries pack to the same byte.
func Pack(bank Bank, settings BankSettings, pins []PinSetting) ([]byte, error) {
	if !bank.Valid() {
		return nil, errcode.New(errcode.Constraint, "pack gpio", "unknown bank %d", int(bank))
	}
	if err := checkSettings(settings); err != nil {
		err.Op = "pack " + bank.String()
		return nil, err
	}

	buf := make([]byte, bank.PayloadSize())
	buf[0] = byte(NewBankDrive(settings.Drive, settings.Slew, settings.Hysteresis))
	buf[1] = byte(NewPower(settings.BackPower))

	first := bank.FirstPin()
	set := make([]bool, bank.NumPins())

	for i, p := range pins {
		field := fmt.Sprintf("gpios[%d]", i)
		if err := checkPin(bank, p); err != nil {
			err.Op = "pack " + bank.String()
			err.Field = field
			return nil, err
		}

		slot := p.Pin - first
		v := byte(p.Config())
		if set[slot] {
			if buf[ControlBytes+slot] == v {
				continue
			}
			return nil, &errcode.E{
				C:      errcode.Constraint,
				Op:     "pack " + bank.String(),
				Field:  field,
				Index:  -1,
				Offset: -1,
				Msg: fmt.Sprintf("gpio %d defined more than once with different settings (0x%02X, 0x%02X)",
					p.Pin, buf[ControlBytes+slot], v),
			}
		}
		set[slot] = true
		buf[ControlBytes+slot] = v
	}

	return buf, nil
}

func checkPin(bank Bank, p PinSetting) *errcode.E {
	for _, r := range ReservedPins {
		if p.Pin == r {
			return errcode.Field(errcode.Constraint, "",
				"gpio %d is reserved for the ID EEPROM", p.Pin)
		}
	}
	first, n := bank.FirstPin(), bank.NumPins()
	if p.Pin < first || p.Pin >= first+n {
		return errcode.Field(errcode.Constraint, "",
			"gpio %d out of range for %s (%d-%d)", p.Pin, bank, first, first+n-1)
	}
	if !p.Fsel.Valid() {
		return errcode.Field(errcode.Constraint, "", "reserved fsel code %d", p.Fsel)
	}
	if !p.Pull.Valid() {
		return errcode.Field(errcode.Constraint, "", "reserved pull code %d", p.Pull)
	}
	return nil
}

// Map is a decoded bank payload.
type Map struct {
	Bank     Bank
	Settings BankSettings

	// Pins holds one entry per pin of the bank, indexed from the bank's first pin
	Pins []PinConfig
}

// Unpack decodes a bank payload.
func Unpack(bank Bank, data []byte) (*Map, error) {
	op := "unpack " + bank.String()
	if !bank.Valid() {
		return nil, errcode.New(errcode.Framing, op, "unknown bank %d", int(bank))
	}
	if len(data) != bank.PayloadSize() {
		return nil, errcode.New(errcode.Framing, op,
			"payload is %d bytes, expected %d", len(data), bank.PayloadSize())
	}

	drive, err := ParseBankDrive(data[0])
	if err != nil {
		return nil, &errcode.E{C: errcode.Framing, Op: op, Index: -1, Offset: 0, Err: err}
	}
	power, err := ParsePower(data[1])
	if err != nil {
		return nil, &errcode.E{C: errcode.Framing, Op: op, Index: -1, Offset: 1, Err: err}
	}

	m := &Map{
		Bank: bank,
		Settings: BankSettings{
			Drive:      drive.Drive(),
			Slew:       drive.Slew(),
			Hysteresis: drive.Hysteresis(),
			BackPower:  power.BackPower(),
		},
		Pins: make([]PinConfig, bank.NumPins()),
	}
	for i, v := range data[ControlBytes:] {
		c, err := ParsePinConfig(v)
		if err != nil {
			return nil, &errcode.E{
				C:      errcode.Framing,
				Op:     op,
				Field:  fmt.Sprintf("gpio %d", bank.FirstPin()+i),
				Index:  -1,
				Offset: ControlBytes + i,
				Err:    err,
			}
		}
		m.Pins[i] = c
	}
	return m, nil
}

// Used returns the settings of every used pin, ordered by GPIO number.
func (m *Map) Used() []PinSetting {
	var out []PinSetting
	for i, c := range m.Pins {
		if c.Used() {
			out = append(out, PinSetting{Pin: m.Bank.FirstPin() + i, Fsel: c.Fsel(), Pull: c.Pull()})
		}
	}
	return out
}

// Bytes packs m back into a payload.
func (m *Map) Bytes() []byte {
	buf := make([]byte, 0, m.Bank.PayloadSize())
	buf = append(buf,
		byte(NewBankDrive(m.Settings.Drive, m.Settings.Slew, m.Settings.Hysteresis)),
		byte(NewPower(m.Settings.BackPower)))
	for _, c := range m.Pins {
		buf = append(buf, byte(c))
	}
	return buf
}
