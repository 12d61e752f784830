package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/moffa90/go-hateep/config"
	"github.com/moffa90/go-hateep/eep"
)

// parsePrefixedUint parses an unsigned integer whose base is given by a 0b,
// 0o or 0x prefix. Without a prefix the value is decimal, leading zeros
// included.
func parsePrefixedUint(s string, bitSize int) (uint64, error) {
	base, digits := 10, s
	switch {
	case strings.HasPrefix(s, "0b"):
		base, digits = 2, s[2:]
	case strings.HasPrefix(s, "0o"):
		base, digits = 8, s[2:]
	case strings.HasPrefix(s, "0x"):
		base, digits = 16, s[2:]
	}
	v, err := strconv.ParseUint(digits, base, bitSize)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, fmt.Errorf("invalid number %q: %v", s, numErr.Err)
		}
		return 0, err
	}
	return v, nil
}

var (
	_ pflag.Value = (*prefixedUint)(nil)
	_ pflag.Value = (*dateValue)(nil)
	_ pflag.Value = (*macValue)(nil)
	_ pflag.Value = (*checksumValue)(nil)
)

// prefixedUint is a pflag.Value for unsigned integers with optional base
// prefixes.
type prefixedUint struct {
	bits  int
	value uint64
	set   bool
}

func newPrefixedUint(bits int) prefixedUint {
	return prefixedUint{bits: bits}
}

func (v *prefixedUint) String() string {
	if !v.set {
		return ""
	}
	return strconv.FormatUint(v.value, 10)
}

func (v *prefixedUint) Set(s string) error {
	n, err := parsePrefixedUint(s, v.bits)
	if err != nil {
		return err
	}
	v.value, v.set = n, true
	return nil
}

func (v *prefixedUint) Type() string {
	return fmt.Sprintf("uint%d", v.bits)
}

// dateValue is a pflag.Value for YYYY-MM-DD dates. "today" selects the
// current local date.
type dateValue struct {
	date config.Date
	set  bool
}

func (v *dateValue) String() string {
	if !v.set {
		return ""
	}
	return v.date.String()
}

func (v *dateValue) Set(s string) error {
	if s == "today" {
		v.date, v.set = config.Today(), true
		return nil
	}
	d, err := config.ParseDate(s)
	if err != nil {
		return err
	}
	v.date, v.set = d, true
	return nil
}

func (v *dateValue) Type() string { return "date" }

// macValue is a pflag.Value for MAC addresses.
type macValue struct {
	mac config.MAC
	set bool
}

func (v *macValue) String() string {
	if !v.set {
		return ""
	}
	return v.mac.String()
}

func (v *macValue) Set(s string) error {
	m, err := config.ParseMAC(s)
	if err != nil {
		return err
	}
	v.mac, v.set = m, true
	return nil
}

func (v *macValue) Type() string { return "mac" }

// checksumValue selects the atom checksum by name.
type checksumValue struct {
	name string
}

var checksums = map[string]eep.Checksum{
	"xmodem": eep.CRC16,
	"arc":    eep.CRC16ARC,
}

func (v *checksumValue) String() string {
	if v.name == "" {
		return "xmodem"
	}
	return v.name
}

func (v *checksumValue) Set(s string) error {
	if _, ok := checksums[s]; !ok {
		return fmt.Errorf("unknown checksum %q, expected xmodem or arc", s)
	}
	v.name = s
	return nil
}

func (v *checksumValue) Type() string { return "checksum" }

// Checksum returns the selected function.
func (v *checksumValue) Checksum() eep.Checksum {
	return checksums[v.String()]
}
