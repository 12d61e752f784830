package config

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/moffa90/go-hateep/errcode"
)

// Overrides replace or supply per-board values at build time.
type Overrides struct {
	Serial *uint32
	EDate  *Date
	MAC    *MAC
}

// Resolver merges a Definition with its included template.
type Resolver struct {
	// Lookup resolves included templates by name. It may be nil when
	// definitions only include inline templates.
	Lookup TemplateLookup

	// Overrides are applied after the merge.
	Overrides Overrides

	// OnOverride, if set, is called when an override replaces a value the
	// definition already had.
	OnOverride func(key, from, to string)
}

// Resolve returns the complete configuration for def.
//
// Top-level keys win over the template. GPIO banks merge bank by bank; within
// a bank a top-level pin entry replaces the template entry for the same GPIO
// entirely and template-only pins are kept. Merged pins are ordered by GPIO
// number.
func (r *Resolver) Resolve(def *Definition) (*Resolved, error) {
	if def == nil {
		return nil, errcode.New(errcode.Schema, "resolve", "no definition")
	}

	out := &Resolved{
		Version:   def.Version,
		Vstr:      def.Vstr,
		Pstr:      def.Pstr,
		PID:       def.PID,
		Prev:      def.Prev,
		Pver:      def.Pver,
		DTStr:     def.DTStr,
		GPIOBanks: cloneBanks(def.GPIOBanks),
	}
	dataVersion := def.EEPROMDataVersion

	if def.Include != nil {
		tmpl, err := r.template(def.Include)
		if err != nil {
			return nil, err
		}
		if tmpl.Version != def.Version {
			return nil, errcode.Field(errcode.Resolution, "version",
				"template version %d does not match definition version %d", tmpl.Version, def.Version)
		}
		if dataVersion == nil {
			dataVersion = tmpl.EEPROMDataVersion
		}
		out.GPIOBanks = mergeBanks(def.GPIOBanks, tmpl.GPIOBanks)
	}

	if dataVersion == nil {
		return nil, missing("eeprom_data_version")
	}
	out.EEPROMDataVersion = *dataVersion

	serial, edate, mac := def.Serial, def.EDate, def.MAC
	if o := r.Overrides.Serial; o != nil {
		if serial != nil && *serial != *o {
			r.notify("serial", strconv.FormatUint(uint64(*serial), 10), strconv.FormatUint(uint64(*o), 10))
		}
		serial = o
	}
	if o := r.Overrides.EDate; o != nil {
		if edate != nil && *edate != *o {
			r.notify("edate", edate.String(), o.String())
		}
		edate = o
	}
	if o := r.Overrides.MAC; o != nil {
		if mac != nil && *mac != *o {
			r.notify("mac", mac.String(), o.String())
		}
		mac = o
	}
	switch {
	case serial == nil:
		return nil, missing("serial")
	case edate == nil:
		return nil, missing("edate")
	case mac == nil:
		return nil, missing("mac")
	}
	out.Serial, out.EDate, out.MAC = *serial, *edate, *mac

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) notify(key, from, to string) {
	if r.OnOverride != nil {
		r.OnOverride(key, from, to)
	}
}

func (r *Resolver) template(inc *Include) (*Template, error) {
	if inc.Template != nil {
		return inc.Template, nil
	}
	if r.Lookup == nil {
		return nil, errcode.Field(errcode.Resolution, "include",
			"template %q included but no template lookup configured", inc.Name)
	}
	t, err := r.Lookup.LookupTemplate(inc.Name)
	if err != nil {
		if errcode.Of(err) == errcode.Unknown {
			return nil, &errcode.E{C: errcode.Resolution, Op: "lookup template", Field: "include", Index: -1, Offset: -1, Err: err}
		}
		return nil, err
	}
	if t == nil {
		return nil, errcode.Field(errcode.Resolution, "include", "template %q not found", inc.Name)
	}
	return t, nil
}

// mergeBanks overlays top on base. Neither input is modified.
func mergeBanks(top, base []Bank) []Bank {
	n := len(base)
	if len(top) > n {
		n = len(top)
	}
	out := make([]Bank, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(top):
			out[i] = cloneBanks(base[i : i+1])[0]
		case i >= len(base):
			out[i] = cloneBanks(top[i : i+1])[0]
		default:
			out[i] = mergeBank(top[i], base[i])
		}
	}
	return out
}

func mergeBank(top, base Bank) Bank {
	b := top
	overridden := make(map[int]bool, len(top.GPIOs))
	for _, p := range top.GPIOs {
		overridden[p.GPIO] = true
	}

	pins := clonePins(top.GPIOs)
	for _, p := range clonePins(base.GPIOs) {
		if !overridden[p.GPIO] {
			pins = append(pins, p)
		}
	}
	sort.SliceStable(pins, func(i, j int) bool { return pins[i].GPIO < pins[j].GPIO })

	b.GPIOs = pins
	return b
}

// Validate checks the schema-level constraints of a resolved configuration.
// Encoding constraints (pin ranges, string contents) are checked when atoms
// are built.
func (c *Resolved) Validate() error {
	if c.Version != FormatVersion {
		return errcode.Field(errcode.Schema, "version",
			"unsupported format version %d (supported: %d)", c.Version, FormatVersion)
	}
	if n := len(c.GPIOBanks); n < 1 || n > 2 {
		return errcode.Field(errcode.Schema, "gpiobanks",
			"unsupported number of gpio banks: %d (min: 1, max: 2)", n)
	}
	for _, s := range []struct{ key, val string }{{"vstr", c.Vstr}, {"pstr", c.Pstr}} {
		if len(s.val) > MaxStringLen {
			return errcode.Field(errcode.Constraint, s.key,
				"string too long: %d bytes (max: %d)", len(s.val), MaxStringLen)
		}
	}
	if c.EDate.IsZero() {
		return errcode.Field(errcode.Schema, "edate", "missing end test date")
	}
	return nil
}

// ProductNumber returns the catalogue number printed on the board label.
func (c *Resolved) ProductNumber() string {
	return fmt.Sprintf("PR1%05dR%02d", c.PID, c.Prev)
}
