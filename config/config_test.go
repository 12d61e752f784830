package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moffa90/go-hateep/errcode"
	"github.com/moffa90/go-hateep/gpio"
)

const fullDefinition = `{
    "version": 1,
    "eeprom_data_version": 3,
    "vstr": "KUNBUS GmbH",
    "pstr": "RevPi Test",
    "pid": 666,
    "prev": 3,
    "pver": 333,
    "dtstr": "revpi-test",
    "serial": 21389,
    "edate": "2022-03-14",
    "mac": "c8-3e-a7-01-02-03",
    "gpiobanks": [
        {
            "drive": "8mA",
            "slew": "default",
            "hysteresis": "enable",
            "gpios": [
                {"gpio": 4, "fsel": "alt1", "pull": "up", "comment": ["I2C1 SCL"]},
                {"gpio": 2, "fsel": "input", "pull": "default"}
            ]
        },
        {
            "drive": "16mA",
            "slew": "default",
            "hysteresis": "default",
            "gpios": [{"gpio": 31, "fsel": "input", "pull": "none"}]
        }
    ]
}`

const baseTemplate = `{
    "version": 1,
    "eeprom_data_version": 2,
    "gpiobanks": [
        {
            "drive": "4mA",
            "slew": "rate_limiting",
            "hysteresis": "default",
            "gpios": [
                {"gpio": 10, "fsel": "input", "pull": "down"},
                {"gpio": 12, "fsel": "output", "pull": "none"}
            ]
        }
    ]
}`

func TestParseDefinition(t *testing.T) {
	def, err := Parse([]byte(fullDefinition))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if def.Version != 1 || def.PID != 666 || def.Prev != 3 || def.Pver != 333 {
		t.Errorf("numeric fields = %+v", def)
	}
	if def.Vstr != "KUNBUS GmbH" || def.Pstr != "RevPi Test" || def.DTStr != "revpi-test" {
		t.Errorf("string fields = %q %q %q", def.Vstr, def.Pstr, def.DTStr)
	}
	if def.Serial == nil || *def.Serial != 21389 {
		t.Errorf("Serial = %v, want 21389", def.Serial)
	}
	if def.EDate == nil || *def.EDate != (Date{2022, time.March, 14}) {
		t.Errorf("EDate = %v, want 2022-03-14", def.EDate)
	}
	if def.MAC == nil || def.MAC.String() != "C8:3E:A7:01:02:03" {
		t.Errorf("MAC = %v, want C8:3E:A7:01:02:03", def.MAC)
	}
	if len(def.GPIOBanks) != 2 {
		t.Fatalf("len(GPIOBanks) = %d, want 2", len(def.GPIOBanks))
	}

	b := def.GPIOBanks[0]
	if b.Drive != gpio.Drive8mA || b.Slew != gpio.SlewDefault || b.Hysteresis != gpio.HysteresisEnable {
		t.Errorf("bank0 settings = %+v", b)
	}
	if len(b.GPIOs) != 2 || b.GPIOs[0].GPIO != 4 || b.GPIOs[0].Fsel != gpio.FselAlt1 || b.GPIOs[0].Pull != gpio.PullUp {
		t.Errorf("bank0 pins = %+v", b.GPIOs)
	}
	if len(b.GPIOs[0].Comment) != 1 {
		t.Errorf("comment = %v", b.GPIOs[0].Comment)
	}
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		errMsg string
	}{
		{
			name:   "unknown top-level key",
			mutate: func(m map[string]interface{}) { m["colour"] = "red" },
			errMsg: "unknown field",
		},
		{
			name:   "missing pid",
			mutate: func(m map[string]interface{}) { delete(m, "pid") },
			errMsg: `field "pid": missing required key`,
		},
		{
			name:   "missing dtstr",
			mutate: func(m map[string]interface{}) { delete(m, "dtstr") },
			errMsg: `field "dtstr"`,
		},
		{
			name: "no gpiobanks and no include",
			mutate: func(m map[string]interface{}) {
				delete(m, "gpiobanks")
			},
			errMsg: `one of "gpiobanks" or "include" is required`,
		},
		{
			name: "missing pin fsel",
			mutate: func(m map[string]interface{}) {
				bank := m["gpiobanks"].([]interface{})[0].(map[string]interface{})
				pin := bank["gpios"].([]interface{})[1].(map[string]interface{})
				delete(pin, "fsel")
			},
			errMsg: `field "gpiobanks[0].gpios[1].fsel"`,
		},
		{
			name: "missing bank drive",
			mutate: func(m map[string]interface{}) {
				bank := m["gpiobanks"].([]interface{})[1].(map[string]interface{})
				delete(bank, "drive")
			},
			errMsg: `field "gpiobanks[1].drive"`,
		},
		{
			name: "unknown pin key",
			mutate: func(m map[string]interface{}) {
				bank := m["gpiobanks"].([]interface{})[0].(map[string]interface{})
				pin := bank["gpios"].([]interface{})[0].(map[string]interface{})
				pin["label"] = "x"
			},
			errMsg: "unknown field",
		},
		{
			name: "unknown fsel",
			mutate: func(m map[string]interface{}) {
				bank := m["gpiobanks"].([]interface{})[0].(map[string]interface{})
				pin := bank["gpios"].([]interface{})[0].(map[string]interface{})
				pin["fsel"] = "alt9"
			},
			errMsg: `unknown variant "alt9"`,
		},
		{
			name:   "pid out of range",
			mutate: func(m map[string]interface{}) { m["pid"] = 70000 },
			errMsg: "pid",
		},
		{
			name:   "bad date",
			mutate: func(m map[string]interface{}) { m["edate"] = "2022-02-30" },
			errMsg: "invalid date",
		},
		{
			name:   "bad mac",
			mutate: func(m map[string]interface{}) { m["mac"] = "C8:3E:A7:01:02" },
			errMsg: "invalid MAC address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]interface{}
			if err := json.Unmarshal([]byte(fullDefinition), &m); err != nil {
				t.Fatal(err)
			}
			tt.mutate(m)
			data, _ := json.Marshal(m)

			_, err := Parse(data)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errMsg)
			}
			if !errors.Is(err, errcode.Schema) {
				t.Errorf("error kind = %q, want schema (%v)", errcode.Of(err), err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestParseInclude(t *testing.T) {
	tests := []struct {
		name     string
		include  string
		wantName string
		inline   bool
	}{
		{"by name", `"base"`, "base", false},
		{"inline", baseTemplate, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `{"version":1,"vstr":"v","pstr":"p","pid":1,"prev":1,"pver":100,"dtstr":"dt","include":` + tt.include + `}`
			def, err := Parse([]byte(in))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if def.Include == nil {
				t.Fatal("Include = nil")
			}
			if def.Include.Name != tt.wantName {
				t.Errorf("Include.Name = %q, want %q", def.Include.Name, tt.wantName)
			}
			if (def.Include.Template != nil) != tt.inline {
				t.Errorf("inline template = %v, want %v", def.Include.Template != nil, tt.inline)
			}
			if def.GPIOBanks != nil {
				t.Errorf("GPIOBanks = %v, want nil", def.GPIOBanks)
			}
		})
	}
}

func TestParseTemplateErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   errcode.Code
		errMsg string
	}{
		{
			name:   "nested include",
			input:  `{"version":1,"gpiobanks":[],"include":"other"}`,
			kind:   errcode.Resolution,
			errMsg: "nested template inclusion",
		},
		{
			name:   "product identity",
			input:  `{"version":1,"gpiobanks":[],"pid":5}`,
			kind:   errcode.Schema,
			errMsg: "unknown field",
		},
		{
			name:   "missing gpiobanks",
			input:  `{"version":1}`,
			kind:   errcode.Schema,
			errMsg: `field "gpiobanks"`,
		},
		{
			name:   "empty",
			input:  ``,
			kind:   errcode.Schema,
			errMsg: "EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate([]byte(tt.input))
			if !errors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want kind %q", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}

	// An inline template carrying its own include fails the top-level parse.
	in := `{"version":1,"vstr":"v","pstr":"p","pid":1,"prev":1,"pver":100,"dtstr":"dt",` +
		`"include":{"version":1,"gpiobanks":[],"include":"deeper"}}`
	if _, err := Parse([]byte(in)); !errors.Is(err, errcode.Resolution) {
		t.Errorf("nested inline include error = %v, want config_resolution", err)
	}
}

func TestParseDateAndMAC(t *testing.T) {
	for _, s := range []string{"2022-13-01", "2023-02-29", "22-03-14", "2022-3-14", "2022-03-14 "} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", s)
		}
	}
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate(leap day) error = %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Errorf("String() = %q", d.String())
	}

	for _, s := range []string{"c8:3e:a7:01:02:03", "C8-3E-A7-01-02-03"} {
		m, err := ParseMAC(s)
		if err != nil {
			t.Fatalf("ParseMAC(%q) error = %v", s, err)
		}
		if m.String() != "C8:3E:A7:01:02:03" {
			t.Errorf("ParseMAC(%q) = %s", s, m)
		}
	}
	for _, s := range []string{"C8:3E-A7:01:02:03", "C8:3E:A7:01:02:0G", "C83EA7010203", "C8.3E.A7.01.02.03"} {
		if _, err := ParseMAC(s); err == nil {
			t.Errorf("ParseMAC(%q) succeeded, want error", s)
		}
	}
	if _, err := ParseColonMAC("C8-3E-A7-01-02-03"); err == nil {
		t.Error("ParseColonMAC(dashes) succeeded, want error")
	}
}

func mustParse(t *testing.T, s string) *Definition {
	t.Helper()
	def, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return def
}

func mustTemplate(t *testing.T, s string) *Template {
	t.Helper()
	tmpl, err := ParseTemplate([]byte(s))
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	return tmpl
}

func TestResolveWithoutTemplate(t *testing.T) {
	r := &Resolver{}
	cfg, err := r.Resolve(mustParse(t, fullDefinition))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.EEPROMDataVersion != 3 || cfg.Serial != 21389 || cfg.EDate.String() != "2022-03-14" {
		t.Errorf("Resolve() = %+v", cfg)
	}
	if cfg.ProductNumber() != "PR100666R03" {
		t.Errorf("ProductNumber() = %q, want PR100666R03", cfg.ProductNumber())
	}
}

func TestResolveTemplateMerge(t *testing.T) {
	top := `{
        "version": 1,
        "vstr": "KUNBUS GmbH",
        "pstr": "RevPi Test",
        "pid": 666,
        "prev": 3,
        "pver": 333,
        "dtstr": "revpi-test",
        "serial": 1,
        "edate": "2022-03-14",
        "mac": "C8:3E:A7:01:02:03",
        "include": "base",
        "gpiobanks": [
            {
                "drive": "8mA",
                "slew": "default",
                "hysteresis": "enable",
                "gpios": [{"gpio": 10, "fsel": "alt2", "pull": "up"}]
            }
        ]
    }`

	r := &Resolver{Lookup: MapLookup{"base": mustTemplate(t, baseTemplate)}}
	cfg, err := r.Resolve(mustParse(t, top))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if cfg.EEPROMDataVersion != 2 {
		t.Errorf("EEPROMDataVersion = %d, want template value 2", cfg.EEPROMDataVersion)
	}
	if len(cfg.GPIOBanks) != 1 {
		t.Fatalf("len(GPIOBanks) = %d, want 1", len(cfg.GPIOBanks))
	}

	bank := cfg.GPIOBanks[0]
	if bank.Drive != gpio.Drive8mA || bank.Hysteresis != gpio.HysteresisEnable {
		t.Errorf("bank settings = %s/%s, want top-level 8mA/enable", bank.Drive, bank.Hysteresis)
	}
	if len(bank.GPIOs) != 2 {
		t.Fatalf("pins = %+v, want gpio 10 and 12", bank.GPIOs)
	}
	pin10, pin12 := bank.GPIOs[0], bank.GPIOs[1]
	if pin10.GPIO != 10 || pin10.Fsel != gpio.FselAlt2 || pin10.Pull != gpio.PullUp {
		t.Errorf("gpio 10 = %+v, want top-level alt2/up", pin10)
	}
	if pin12.GPIO != 12 || pin12.Fsel != gpio.FselOutput || pin12.Pull != gpio.PullNone {
		t.Errorf("gpio 12 = %+v, want template output/none", pin12)
	}
}

func TestResolveTemplateOnlyBanks(t *testing.T) {
	top := `{"version":1,"eeprom_data_version":7,"vstr":"v","pstr":"p","pid":1,"prev":1,"pver":100,"dtstr":"dt",
        "serial":5,"edate":"2023-01-02","mac":"00:11:22:33:44:55","include":` + baseTemplate + `}`

	def := mustParse(t, top)
	tmpl := def.Include.Template
	cfg, err := (&Resolver{}).Resolve(def)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.EEPROMDataVersion != 7 {
		t.Errorf("EEPROMDataVersion = %d, want top-level 7", cfg.EEPROMDataVersion)
	}
	if len(cfg.GPIOBanks) != 1 || len(cfg.GPIOBanks[0].GPIOs) != 2 {
		t.Fatalf("GPIOBanks = %+v", cfg.GPIOBanks)
	}

	cfg.GPIOBanks[0].GPIOs[0].GPIO = 99
	if tmpl.GPIOBanks[0].GPIOs[0].GPIO == 99 {
		t.Error("resolved config shares pins with the template")
	}
}

func TestResolveErrors(t *testing.T) {
	base := mustTemplate(t, baseTemplate)
	v2 := mustTemplate(t, strings.Replace(baseTemplate, `"version": 1`, `"version": 2`, 1))

	header := `"vstr":"v","pstr":"p","pid":1,"prev":1,"pver":100,"dtstr":"dt","serial":1,"edate":"2022-01-01","mac":"00:11:22:33:44:55"`
	tests := []struct {
		name   string
		def    string
		lookup TemplateLookup
		kind   errcode.Code
		errMsg string
	}{
		{
			name:   "template not found",
			def:    `{"version":1,` + header + `,"include":"missing"}`,
			lookup: MapLookup{"base": base},
			kind:   errcode.Resolution,
			errMsg: `template "missing" not found`,
		},
		{
			name:   "no lookup",
			def:    `{"version":1,` + header + `,"include":"base"}`,
			kind:   errcode.Resolution,
			errMsg: "no template lookup",
		},
		{
			name:   "version mismatch",
			def:    `{"version":1,` + header + `,"include":"v2"}`,
			lookup: MapLookup{"v2": v2},
			kind:   errcode.Resolution,
			errMsg: "template version 2 does not match",
		},
		{
			name:   "unsupported format version",
			def:    `{"version":2,` + header + `,"include":"v2"}`,
			lookup: MapLookup{"v2": v2},
			kind:   errcode.Schema,
			errMsg: "unsupported format version 2",
		},
		{
			name: "missing data version",
			def: `{"version":1,` + header + `,"gpiobanks":[{"drive":"default","slew":"default",` +
				`"hysteresis":"default","gpios":[]}]}`,
			kind:   errcode.Schema,
			errMsg: `field "eeprom_data_version"`,
		},
		{
			name: "too many banks",
			def: `{"version":1,"eeprom_data_version":1,` + header + `,"gpiobanks":[` +
				strings.Repeat(`{"drive":"default","slew":"default","hysteresis":"default","gpios":[]},`, 2) +
				`{"drive":"default","slew":"default","hysteresis":"default","gpios":[]}]}`,
			kind:   errcode.Schema,
			errMsg: "unsupported number of gpio banks: 3",
		},
		{
			name:   "no banks",
			def:    `{"version":1,"eeprom_data_version":1,` + header + `,"gpiobanks":[]}`,
			kind:   errcode.Schema,
			errMsg: "unsupported number of gpio banks: 0",
		},
		{
			name: "vendor string too long",
			def: `{"version":1,"eeprom_data_version":1,"vstr":"` + strings.Repeat("x", 256) + `",` +
				strings.TrimPrefix(header, `"vstr":"v",`) + `,"include":"base"}`,
			lookup: MapLookup{"base": base},
			kind:   errcode.Constraint,
			errMsg: "string too long: 256 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{Lookup: tt.lookup}
			_, err := r.Resolve(mustParse(t, tt.def))
			if !errors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want kind %q", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestResolveOverrides(t *testing.T) {
	def := mustParse(t, fullDefinition)
	def.MAC = nil

	serial := uint32(42)
	edate := Date{2024, time.June, 1}
	mac := MAC{0xC8, 0x3E, 0xA7, 0, 0, 1}

	var overridden []string
	r := &Resolver{
		Overrides: Overrides{Serial: &serial, EDate: &edate, MAC: &mac},
		OnOverride: func(key, from, to string) {
			overridden = append(overridden, key+":"+from+"->"+to)
		},
	}
	cfg, err := r.Resolve(def)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Serial != 42 || cfg.EDate != edate || cfg.MAC != mac {
		t.Errorf("Resolve() = %+v", cfg)
	}

	want := []string{"serial:21389->42", "edate:2022-03-14->2024-06-01"}
	if strings.Join(overridden, ",") != strings.Join(want, ",") {
		t.Errorf("OnOverride calls = %v, want %v", overridden, want)
	}

	def.MAC = nil
	def.Serial = nil
	_, err = (&Resolver{}).Resolve(def)
	if !errors.Is(err, errcode.Schema) || !strings.Contains(err.Error(), `"serial"`) {
		t.Errorf("missing serial error = %v", err)
	}
}

func TestDirLookup(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.json"), []byte(baseTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "empty.json"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	lookup := DirLookup(dir)

	for _, name := range []string{"base", "base.json"} {
		tmpl, err := lookup.LookupTemplate(name)
		if err != nil {
			t.Fatalf("LookupTemplate(%q) error = %v", name, err)
		}
		if len(tmpl.GPIOBanks) != 1 {
			t.Errorf("LookupTemplate(%q) banks = %d", name, len(tmpl.GPIOBanks))
		}
	}

	tests := []struct {
		name string
		kind errcode.Code
	}{
		{"missing", errcode.Resolution},
		{"../base", errcode.Resolution},
		{"sub/base", errcode.Resolution},
		{"..", errcode.Resolution},
		{"empty", errcode.Schema},
	}
	for _, tt := range tests {
		if _, err := lookup.LookupTemplate(tt.name); !errors.Is(err, tt.kind) {
			t.Errorf("LookupTemplate(%q) error = %v, want kind %q", tt.name, err, tt.kind)
		}
	}
}

func TestResolvedJSONExport(t *testing.T) {
	cfg, err := (&Resolver{}).Resolve(mustParse(t, fullDefinition))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"edate":"2022-03-14"`, `"mac":"C8:3E:A7:01:02:03"`, `"drive":"8mA"`, `"fsel":"alt1"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("export %s missing %s", data, want)
		}
	}

	// The export is itself a valid definition.
	def, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(export) error = %v", err)
	}
	again, err := (&Resolver{}).Resolve(def)
	if err != nil {
		t.Fatalf("Resolve(export) error = %v", err)
	}
	if again.Serial != cfg.Serial || again.MAC != cfg.MAC || len(again.GPIOBanks) != 2 {
		t.Errorf("re-resolved export = %+v", again)
	}
}
