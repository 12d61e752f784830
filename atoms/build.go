// Package atoms translates between a resolved configuration and the typed
// atoms of an EEPROM image.
//
// Build emits the atoms in image order:
//
//	vendor info, gpio map (bank 0), device tree, custom 0..6, [gpio bank 1 map]
//
// Decode goes the other way and returns a Report holding every decoded field
// and the consumer-visible attribute tree.
package atoms

import (
	"github.com/moffa90/go-hateep/config"
	"github.com/moffa90/go-hateep/eep"
	"github.com/moffa90/go-hateep/errcode"
	"github.com/moffa90/go-hateep/gpio"
	"github.com/moffa90/go-hateep/identity"
)

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	secondBank bool
}

func defaultBuildConfig() buildConfig {
	return buildConfig{secondBank: true}
}

// WithSecondBank enables or disables the bank 1 gpio map atom. When disabled,
// configurations with two GPIO banks are rejected. Enabled by default.
func WithSecondBank(enabled bool) Option {
	return func(c *buildConfig) {
		c.secondBank = enabled
	}
}

// Vendor returns the vendor info for cfg with the derived UUID.
func Vendor(cfg *config.Resolved) VendorInfo {
	return VendorInfo{
		UUID:    identity.Derive(cfg.PID, cfg.Pver, cfg.Prev, cfg.Serial),
		PID:     cfg.PID,
		Pver:    cfg.Pver,
		Vendor:  cfg.Vstr,
		Product: cfg.Pstr,
	}
}

// Custom returns the custom fields for cfg.
func Custom(cfg *config.Resolved) *CustomData {
	return &CustomData{
		FormatVersion:   cfg.Version,
		Serial:          cfg.Serial,
		ProductRevision: cfg.Prev,
		EndTestDate:     cfg.EDate,
		Lot:             LotReserved,
		MAC:             cfg.MAC,
		DataVersion:     cfg.EEPROMDataVersion,
	}
}

// Build returns the atoms for cfg in image order. Counts and checksums are
// left for the encoder.
func Build(cfg *config.Resolved, opts ...Option) ([]*eep.Atom, error) {
	bc := defaultBuildConfig()
	for _, opt := range opts {
		opt(&bc)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.GPIOBanks) > 1 && !bc.secondBank {
		return nil, errcode.Field(errcode.Constraint, "gpiobanks",
			"second gpio bank configured but bank 1 output is disabled")
	}

	vendor, err := EncodeVendor(Vendor(cfg))
	if err != nil {
		return nil, err
	}

	b0 := cfg.GPIOBanks[0]
	bank0, err := gpio.Pack(gpio.Bank0, b0.Settings(), b0.PinSettings())
	if err != nil {
		return nil, err
	}

	if err := checkText("dtstr", cfg.DTStr, 0); err != nil {
		return nil, err
	}

	custom, err := EncodeCustom(Custom(cfg))
	if err != nil {
		return nil, err
	}

	atoms := make([]*eep.Atom, 0, 4+NumCustomFields)
	atoms = append(atoms,
		&eep.Atom{Type: eep.TypeVendorInfo, Data: vendor},
		&eep.Atom{Type: eep.TypeGPIOMap, Data: bank0},
		&eep.Atom{Type: eep.TypeLinuxDT, Data: []byte(cfg.DTStr)},
	)
	for _, payload := range custom {
		atoms = append(atoms, &eep.Atom{Type: eep.TypeCustom, Data: payload})
	}

	if len(cfg.GPIOBanks) > 1 {
		b1 := cfg.GPIOBanks[1]
		bank1, err := gpio.Pack(gpio.Bank1, b1.Settings(), b1.PinSettings())
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, &eep.Atom{Type: eep.TypeGPIOBank1Map, Data: bank1})
	}

	return atoms, nil
}
