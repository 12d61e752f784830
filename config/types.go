// Package config reads HAT EEPROM definitions and resolves them, together
// with an optional template, into the single configuration the atom builders
// consume.
//
// A definition is JSON with a strict schema: unknown keys are rejected at
// every level and mandatory keys must be present.
//
//	{
//	    "version": 1,
//	    "eeprom_data_version": 3,
//	    "vstr": "KUNBUS GmbH",
//	    "pstr": "RevPi Example 8GB",
//	    "pid": 666,
//	    "prev": 3,
//	    "pver": 333,
//	    "dtstr": "revpi-example-2022",
//	    "include": "base",
//	    "gpiobanks": [
//	        {
//	            "drive": "8mA",
//	            "slew": "default",
//	            "hysteresis": "enable",
//	            "gpios": [{"gpio": 10, "fsel": "output", "pull": "none"}]
//	        }
//	    ]
//	}
package config

import (
	"github.com/moffa90/go-hateep/gpio"
)

// FormatVersion is the only supported definition format version.
const FormatVersion = 1

// MaxStringLen is the longest vendor or product string the vendor atom can hold.
const MaxStringLen = 255

// Pin configures one GPIO.
type Pin struct {
	GPIO    int       `json:"gpio"`
	Fsel    gpio.Fsel `json:"fsel"`
	Pull    gpio.Pull `json:"pull"`
	Comment []string  `json:"comment,omitempty"`
}

// Setting returns the packer input for p.
func (p Pin) Setting() gpio.PinSetting {
	return gpio.PinSetting{Pin: p.GPIO, Fsel: p.Fsel, Pull: p.Pull}
}

// Bank configures one GPIO bank.
type Bank struct {
	Drive      gpio.Drive      `json:"drive"`
	Slew       gpio.Slew       `json:"slew"`
	Hysteresis gpio.Hysteresis `json:"hysteresis"`
	GPIOs      []Pin           `json:"gpios"`
}

// Settings returns the bank-wide packer settings. Boards described by a
// definition never back power the host.
func (b Bank) Settings() gpio.BankSettings {
	return gpio.BankSettings{
		Drive:      b.Drive,
		Slew:       b.Slew,
		Hysteresis: b.Hysteresis,
		BackPower:  gpio.BackPowerNone,
	}
}

// PinSettings returns the packer input for every pin of the bank.
func (b Bank) PinSettings() []gpio.PinSetting {
	out := make([]gpio.PinSetting, len(b.GPIOs))
	for i, p := range b.GPIOs {
		out[i] = p.Setting()
	}
	return out
}

// Template is an includable base definition. It carries no product identity.
type Template struct {
	Version           uint16  `json:"version"`
	EEPROMDataVersion *uint16 `json:"eeprom_data_version,omitempty"`
	GPIOBanks         []Bank  `json:"gpiobanks"`
}

// Include references a template, either by name or inline.
type Include struct {
	// Name is resolved through a TemplateLookup
	Name string

	// Template is an inline template; it takes precedence over Name
	Template *Template
}

// Definition is a parsed, unresolved top-level definition.
//
// Required keys are plain values. Keys that may come from a template or from
// caller overrides are pointers, nil when absent; GPIOBanks is nil when absent.
type Definition struct {
	Version           uint16
	EEPROMDataVersion *uint16
	Vstr              string
	Pstr              string
	PID               uint16
	Prev              uint16
	Pver              uint16
	DTStr             string
	Serial            *uint32
	EDate             *Date
	MAC               *MAC
	GPIOBanks         []Bank
	Include           *Include
}

// Resolved is a complete configuration, ready for atom building. It does not
// share memory with the Definition or Template it was resolved from.
type Resolved struct {
	Version           uint16 `json:"version"`
	EEPROMDataVersion uint16 `json:"eeprom_data_version"`
	Vstr              string `json:"vstr"`
	Pstr              string `json:"pstr"`
	PID               uint16 `json:"pid"`
	Prev              uint16 `json:"prev"`
	Pver              uint16 `json:"pver"`
	DTStr             string `json:"dtstr"`
	Serial            uint32 `json:"serial"`
	EDate             Date   `json:"edate"`
	MAC               MAC    `json:"mac"`
	GPIOBanks         []Bank `json:"gpiobanks"`
}

func cloneBanks(banks []Bank) []Bank {
	if banks == nil {
		return nil
	}
	out := make([]Bank, len(banks))
	for i, b := range banks {
		out[i] = b
		out[i].GPIOs = clonePins(b.GPIOs)
	}
	return out
}

func clonePins(pins []Pin) []Pin {
	out := make([]Pin, len(pins))
	for i, p := range pins {
		out[i] = p
		if p.Comment != nil {
			out[i].Comment = append([]string(nil), p.Comment...)
		}
	}
	return out
}
