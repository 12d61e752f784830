package gpio

import (
	"fmt"

	"github.com/moffa90/go-hateep/errcode"
)

// Bit layout of the control and pin bytes.
const (
	driveMask      = 0x0f
	slewShift      = 4
	hysteresisShft = 6
	twoBitMask     = 0x03

	backPowerMask = 0x03

	fselMask     = 0x07
	reservedMask = 0x18
	pullShift    = 5
	usedBit      = 0x80
)

// BankDrive is the bank_drive control byte.
//
//	[7:6] hysteresis  [5:4] slew  [3:0] drive
type BankDrive byte

// NewBankDrive packs the three bank-wide electrical settings.
func NewBankDrive(d Drive, s Slew, h Hysteresis) BankDrive {
	return BankDrive(byte(d)&driveMask |
		(byte(s)&twoBitMask)<<slewShift |
		(byte(h)&twoBitMask)<<hysteresisShft)
}

// ParseBankDrive validates a bank_drive byte read from an image.
func ParseBankDrive(v byte) (BankDrive, error) {
	b := BankDrive(v)
	if !b.Drive().Valid() {
		return 0, fmt.Errorf("bank_drive 0x%02X: reserved drive code %d", v, b.Drive())
	}
	if !b.Slew().Valid() {
		return 0, fmt.Errorf("bank_drive 0x%02X: reserved slew code %d", v, b.Slew())
	}
	if !b.Hysteresis().Valid() {
		return 0, fmt.Errorf("bank_drive 0x%02X: reserved hysteresis code %d", v, b.Hysteresis())
	}
	return b, nil
}

func (b BankDrive) Drive() Drive { return Drive(byte(b) & driveMask) }

func (b BankDrive) Slew() Slew { return Slew(byte(b) >> slewShift & twoBitMask) }

func (b BankDrive) Hysteresis() Hysteresis {
	return Hysteresis(byte(b) >> hysteresisShft & twoBitMask)
}

// Power is the power control byte.
//
//	[7:2] reserved, zero  [1:0] back_power
type Power byte

// NewPower packs the back-power capability.
func NewPower(bp BackPower) Power { return Power(byte(bp) & backPowerMask) }

// ParsePower validates a power byte read from an image.
func ParsePower(v byte) (Power, error) {
	if v&^backPowerMask != 0 {
		return 0, fmt.Errorf("power 0x%02X: reserved bits set", v)
	}
	p := Power(v)
	if !p.BackPower().Valid() {
		return 0, fmt.Errorf("power 0x%02X: reserved back_power code %d", v, p.BackPower())
	}
	return p, nil
}

func (p Power) BackPower() BackPower { return BackPower(byte(p) & backPowerMask) }

// PinConfig is one per-pin byte.
//
//	[7] is_used  [6:5] pull  [4:3] reserved, zero  [2:0] fsel
type PinConfig byte

// NewPinConfig packs a pin byte.
func NewPinConfig(f Fsel, p Pull, used bool) PinConfig {
	v := byte(f)&fselMask | (byte(p)&twoBitMask)<<pullShift
	if used {
		v |= usedBit
	}
	return PinConfig(v)
}

// ParsePinConfig validates a pin byte read from an image.
func ParsePinConfig(v byte) (PinConfig, error) {
	if v&reservedMask != 0 {
		return 0, fmt.Errorf("pin 0x%02X: reserved bits set", v)
	}
	return PinConfig(v), nil
}

func (c PinConfig) Fsel() Fsel { return Fsel(byte(c) & fselMask) }

func (c PinConfig) Pull() Pull { return Pull(byte(c) >> pullShift & twoBitMask) }

func (c PinConfig) Used() bool { return byte(c)&usedBit != 0 }

func (c PinConfig) String() string {
	if !c.Used() {
		return "unused"
	}
	return fmt.Sprintf("%s, pull %s", c.Fsel(), c.Pull())
}

// checkSettings rejects enum values that do not fit their bit fields.
func checkSettings(s BankSettings) *errcode.E {
	switch {
	case !s.Drive.Valid():
		return errcode.Field(errcode.Constraint, "drive", "reserved drive code %d", s.Drive)
	case !s.Slew.Valid():
		return errcode.Field(errcode.Constraint, "slew", "reserved slew code %d", s.Slew)
	case !s.Hysteresis.Valid():
		return errcode.Field(errcode.Constraint, "hysteresis", "reserved hysteresis code %d", s.Hysteresis)
	case !s.BackPower.Valid():
		return errcode.Field(errcode.Constraint, "back_power", "reserved back_power code %d", s.BackPower)
	}
	return nil
}
