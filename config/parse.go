package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-hateep/errcode"
	"github.com/moffa90/go-hateep/gpio"
)

// rawDefinition mirrors the JSON schema with every key optional so presence
// can be checked after decoding.
type rawDefinition struct {
	Version           *uint16   `json:"version"`
	EEPROMDataVersion *uint16   `json:"eeprom_data_version"`
	Vstr              *string   `json:"vstr"`
	Pstr              *string   `json:"pstr"`
	PID               *uint16   `json:"pid"`
	Prev              *uint16   `json:"prev"`
	Pver              *uint16   `json:"pver"`
	DTStr             *string   `json:"dtstr"`
	Serial            *uint32   `json:"serial"`
	EDate             *Date     `json:"edate"`
	MAC               *MAC      `json:"mac"`
	GPIOBanks         []rawBank `json:"gpiobanks"`
	Include           *Include  `json:"include"`
}

type rawTemplate struct {
	Version           *uint16         `json:"version"`
	EEPROMDataVersion *uint16         `json:"eeprom_data_version"`
	GPIOBanks         []rawBank       `json:"gpiobanks"`
	Include           json.RawMessage `json:"include"`
}

type rawBank struct {
	Drive      *gpio.Drive      `json:"drive"`
	Slew       *gpio.Slew       `json:"slew"`
	Hysteresis *gpio.Hysteresis `json:"hysteresis"`
	GPIOs      []rawPin         `json:"gpios"`
}

type rawPin struct {
	GPIO    *int       `json:"gpio"`
	Fsel    *gpio.Fsel `json:"fsel"`
	Pull    *gpio.Pull `json:"pull"`
	Comment []string   `json:"comment"`
}

// Parse decodes a top-level definition.
func Parse(data []byte) (*Definition, error) {
	var raw rawDefinition
	if err := decodeStrict(data, &raw); err != nil {
		return nil, schemaError("parse definition", err)
	}
	return raw.definition()
}

// ParseReader reads and decodes a top-level definition.
func ParseReader(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return Parse(data)
}

// ParseFile reads and decodes the definition stored at path.
func ParseFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseTemplate decodes a template. A template that includes another
// template is rejected.
func ParseTemplate(data []byte) (*Template, error) {
	var raw rawTemplate
	if err := decodeStrict(data, &raw); err != nil {
		return nil, schemaError("parse template", err)
	}
	return raw.template("")
}

// UnmarshalJSON accepts a template name or an inline template object.
func (inc *Include) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if name == "" {
			return errcode.Field(errcode.Schema, "include", "template name is empty")
		}
		*inc = Include{Name: name}
		return nil
	}

	var raw rawTemplate
	if err := decodeStrict(data, &raw); err != nil {
		return schemaError("parse include", err)
	}
	t, err := raw.template("include.")
	if err != nil {
		return err
	}
	*inc = Include{Template: t}
	return nil
}

// MarshalJSON writes the template name or the inline template.
func (inc Include) MarshalJSON() ([]byte, error) {
	if inc.Template != nil {
		return json.Marshal(inc.Template)
	}
	return json.Marshal(inc.Name)
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value")
	}
	return nil
}

// schemaError tags decoder errors as schema errors, keeping errors that
// already carry a kind.
func schemaError(op string, err error) error {
	if errcode.Of(err) != errcode.Unknown {
		return err
	}
	return errcode.Wrap(errcode.Schema, op, err)
}

func missing(path string) error {
	return errcode.Field(errcode.Schema, path, "missing required key")
}

func (r *rawDefinition) definition() (*Definition, error) {
	required := []struct {
		key     string
		present bool
	}{
		{"version", r.Version != nil},
		{"vstr", r.Vstr != nil},
		{"pstr", r.Pstr != nil},
		{"pid", r.PID != nil},
		{"prev", r.Prev != nil},
		{"pver", r.Pver != nil},
		{"dtstr", r.DTStr != nil},
	}
	for _, f := range required {
		if !f.present {
			return nil, missing(f.key)
		}
	}
	if r.GPIOBanks == nil && r.Include == nil {
		return nil, errcode.Field(errcode.Schema, "gpiobanks",
			"one of \"gpiobanks\" or \"include\" is required")
	}

	banks, err := banksOf("", r.GPIOBanks)
	if err != nil {
		return nil, err
	}

	return &Definition{
		Version:           *r.Version,
		EEPROMDataVersion: r.EEPROMDataVersion,
		Vstr:              *r.Vstr,
		Pstr:              *r.Pstr,
		PID:               *r.PID,
		Prev:              *r.Prev,
		Pver:              *r.Pver,
		DTStr:             *r.DTStr,
		Serial:            r.Serial,
		EDate:             r.EDate,
		MAC:               r.MAC,
		GPIOBanks:         banks,
		Include:           r.Include,
	}, nil
}

func (r *rawTemplate) template(prefix string) (*Template, error) {
	if r.Include != nil {
		return nil, errcode.Field(errcode.Resolution, prefix+"include",
			"nested template inclusion is not supported")
	}
	if r.Version == nil {
		return nil, missing(prefix + "version")
	}
	if r.GPIOBanks == nil {
		return nil, missing(prefix + "gpiobanks")
	}
	banks, err := banksOf(prefix, r.GPIOBanks)
	if err != nil {
		return nil, err
	}
	return &Template{
		Version:           *r.Version,
		EEPROMDataVersion: r.EEPROMDataVersion,
		GPIOBanks:         banks,
	}, nil
}

func banksOf(prefix string, raw []rawBank) ([]Bank, error) {
	if raw == nil {
		return nil, nil
	}
	banks := make([]Bank, len(raw))
	for i, rb := range raw {
		path := fmt.Sprintf("%sgpiobanks[%d]", prefix, i)
		switch {
		case rb.Drive == nil:
			return nil, missing(path + ".drive")
		case rb.Slew == nil:
			return nil, missing(path + ".slew")
		case rb.Hysteresis == nil:
			return nil, missing(path + ".hysteresis")
		case rb.GPIOs == nil:
			return nil, missing(path + ".gpios")
		}

		b := Bank{
			Drive:      *rb.Drive,
			Slew:       *rb.Slew,
			Hysteresis: *rb.Hysteresis,
			GPIOs:      make([]Pin, len(rb.GPIOs)),
		}
		for j, rp := range rb.GPIOs {
			pinPath := fmt.Sprintf("%s.gpios[%d]", path, j)
			switch {
			case rp.GPIO == nil:
				return nil, missing(pinPath + ".gpio")
			case rp.Fsel == nil:
				return nil, missing(pinPath + ".fsel")
			case rp.Pull == nil:
				return nil, missing(pinPath + ".pull")
			}
			b.GPIOs[j] = Pin{GPIO: *rp.GPIO, Fsel: *rp.Fsel, Pull: *rp.Pull, Comment: rp.Comment}
		}
		banks[i] = b
	}
	return banks, nil
}
