package gpio

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/moffa90/go-hateep/errcode"
)

func TestNewPinConfig(t *testing.T) {
	tests := []struct {
		fsel Fsel
		pull Pull
		used bool
		want byte
	}{
		{FselInput, PullDefault, false, 0x00},
		{FselOutput, PullDefault, false, 0x01},
		{FselAlt0, PullDefault, false, 0x04},
		{FselAlt1, PullDefault, false, 0x05},
		{FselAlt2, PullDefault, false, 0x06},
		{FselAlt3, PullDefault, false, 0x07},
		{FselAlt4, PullDefault, false, 0x03},
		{FselAlt5, PullDefault, false, 0x02},
		{FselInput, PullUp, false, 0x20},
		{FselInput, PullDown, false, 0x40},
		{FselInput, PullNone, false, 0x60},
		{FselInput, PullDefault, true, 0x80},
		{FselAlt3, PullNone, true, 0xE7},
	}

	for _, tt := range tests {
		got := NewPinConfig(tt.fsel, tt.pull, tt.used)
		if byte(got) != tt.want {
			t.Errorf("NewPinConfig(%s, %s, %v) = 0x%02X, want 0x%02X", tt.fsel, tt.pull, tt.used, byte(got), tt.want)
		}
		if got.Fsel() != tt.fsel || got.Pull() != tt.pull || got.Used() != tt.used {
			t.Errorf("accessors of 0x%02X = (%s, %s, %v), want (%s, %s, %v)",
				byte(got), got.Fsel(), got.Pull(), got.Used(), tt.fsel, tt.pull, tt.used)
		}
	}
}

func TestNewBankDrive(t *testing.T) {
	tests := []struct {
		drive Drive
		slew  Slew
		hyst  Hysteresis
		want  byte
	}{
		{DriveDefault, SlewDefault, HysteresisDefault, 0x00},
		{Drive8mA, SlewDefault, HysteresisEnable, 0x84},
		{Drive16mA, SlewNoLimit, HysteresisDisable, 0x68},
		{Drive2mA, SlewRateLimiting, HysteresisDefault, 0x11},
	}

	for _, tt := range tests {
		got := NewBankDrive(tt.drive, tt.slew, tt.hyst)
		if byte(got) != tt.want {
			t.Errorf("NewBankDrive(%s, %s, %s) = 0x%02X, want 0x%02X", tt.drive, tt.slew, tt.hyst, byte(got), tt.want)
		}
		parsed, err := ParseBankDrive(byte(got))
		if err != nil {
			t.Fatalf("ParseBankDrive(0x%02X) error = %v", byte(got), err)
		}
		if parsed.Drive() != tt.drive || parsed.Slew() != tt.slew || parsed.Hysteresis() != tt.hyst {
			t.Errorf("ParseBankDrive(0x%02X) fields mismatch", byte(got))
		}
	}
}

func TestParseReservedValues(t *testing.T) {
	for _, v := range []byte{0x09, 0x0F, 0x30, 0xC0} {
		if _, err := ParseBankDrive(v); err == nil {
			t.Errorf("ParseBankDrive(0x%02X) succeeded, want error", v)
		}
	}
	for _, v := range []byte{0x03, 0x04, 0x80} {
		if _, err := ParsePower(v); err == nil {
			t.Errorf("ParsePower(0x%02X) succeeded, want error", v)
		}
	}
	for _, v := range []byte{0x08, 0x10, 0x98} {
		if _, err := ParsePinConfig(v); err == nil {
			t.Errorf("ParsePinConfig(0x%02X) succeeded, want error", v)
		}
	}
	if p, err := ParsePower(0x02); err != nil || p.BackPower() != BackPower2A {
		t.Errorf("ParsePower(0x02) = %v, %v; want 2A", p.BackPower(), err)
	}
}

func TestPackSinglePin(t *testing.T) {
	buf, err := Pack(Bank0, BankSettings{}, []PinSetting{{Pin: 5, Fsel: FselOutput, Pull: PullUp}})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if len(buf) != 30 {
		t.Fatalf("len = %d, want 30", len(buf))
	}

	for pin := 0; pin < Bank0Pins; pin++ {
		got := buf[ControlBytes+pin]
		if pin == 5 {
			if got != 0xA1 {
				t.Errorf("pin 5 = 0x%02X, want 0xA1", got)
			}
			continue
		}
		if got != 0 {
			t.Errorf("pin %d = 0x%02X, want 0x00 (unused)", pin, got)
		}
	}
}

func TestPackDuplicatePins(t *testing.T) {
	pin := PinSetting{Pin: 5, Fsel: FselAlt0, Pull: PullNone}

	if _, err := Pack(Bank0, BankSettings{}, []PinSetting{pin, pin}); err != nil {
		t.Errorf("identical duplicate: Pack() error = %v", err)
	}

	other := pin
	other.Pull = PullDown
	_, err := Pack(Bank0, BankSettings{}, []PinSetting{pin, other})
	if !errors.Is(err, errcode.Constraint) {
		t.Fatalf("differing duplicate: error = %v, want encoding constraint", err)
	}
	if !strings.Contains(err.Error(), "gpios[1]") {
		t.Errorf("error = %v, want field gpios[1]", err)
	}
}

func TestPackPinRange(t *testing.T) {
	tests := []struct {
		name   string
		bank   Bank
		pin    int
		errMsg string
	}{
		{"bank0 reserved 0", Bank0, 0, "reserved for the ID EEPROM"},
		{"bank0 reserved 1", Bank0, 1, "reserved for the ID EEPROM"},
		{"bank0 too high", Bank0, 28, "out of range for bank0 (0-27)"},
		{"bank0 negative", Bank0, -1, "out of range"},
		{"bank1 too low", Bank1, 27, "out of range for bank1 (28-45)"},
		{"bank1 too high", Bank1, 46, "out of range for bank1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pack(tt.bank, BankSettings{}, []PinSetting{{Pin: tt.pin}})
			if !errors.Is(err, errcode.Constraint) {
				t.Fatalf("error = %v, want encoding constraint", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestPackRejectsReservedSettings(t *testing.T) {
	tests := []BankSettings{
		{Drive: 9},
		{Slew: 3},
		{Hysteresis: 3},
		{BackPower: 3},
	}
	for _, s := range tests {
		if _, err := Pack(Bank0, s, nil); !errors.Is(err, errcode.Constraint) {
			t.Errorf("Pack(%+v) error = %v, want encoding constraint", s, err)
		}
	}
}

func TestPackUnpackBank1(t *testing.T) {
	settings := BankSettings{Drive: Drive16mA, Slew: SlewDefault, Hysteresis: HysteresisDefault, BackPower: BackPower1A3}
	pins := []PinSetting{
		{Pin: 45, Fsel: FselOutput, Pull: PullDown},
		{Pin: 31, Fsel: FselInput, Pull: PullNone},
	}

	buf, err := Pack(Bank1, settings, pins)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if len(buf) != 20 {
		t.Fatalf("len = %d, want 20", len(buf))
	}
	if buf[ControlBytes+3] != 0xE0 {
		t.Errorf("gpio 31 = 0x%02X, want 0xE0", buf[ControlBytes+3])
	}

	m, err := Unpack(Bank1, buf)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if m.Settings != settings {
		t.Errorf("Settings = %+v, want %+v", m.Settings, settings)
	}

	used := m.Used()
	if len(used) != 2 || used[0].Pin != 31 || used[1].Pin != 45 {
		t.Fatalf("Used() = %+v, want gpio 31 and 45", used)
	}
	if used[1].Fsel != FselOutput || used[1].Pull != PullDown {
		t.Errorf("gpio 45 = %+v", used[1])
	}

	if got := m.Bytes(); string(got) != string(buf) {
		t.Errorf("Bytes() = % X, want % X", got, buf)
	}
}

func TestUnpackErrors(t *testing.T) {
	if _, err := Unpack(Bank0, make([]byte, 20)); !errors.Is(err, errcode.Framing) {
		t.Errorf("short payload error = %v, want framing", err)
	}

	buf := make([]byte, 30)
	buf[ControlBytes+4] = 0x08
	_, err := Unpack(Bank0, buf)
	if !errors.Is(err, errcode.Framing) {
		t.Fatalf("reserved bits error = %v, want framing", err)
	}
	if !strings.Contains(err.Error(), "gpio 4") {
		t.Errorf("error = %v, want it to name gpio 4", err)
	}
}

func TestEnumText(t *testing.T) {
	var bank struct {
		Drive      Drive      `json:"drive"`
		Slew       Slew       `json:"slew"`
		Hysteresis Hysteresis `json:"hysteresis"`
		Fsel       Fsel       `json:"fsel"`
		Pull       Pull       `json:"pull"`
	}

	in := `{"drive":"8mA","slew":"rate_limiting","hysteresis":"enable","fsel":"alt4","pull":"none"}`
	if err := json.Unmarshal([]byte(in), &bank); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if bank.Drive != Drive8mA || bank.Slew != SlewRateLimiting || bank.Hysteresis != HysteresisEnable ||
		bank.Fsel != FselAlt4 || bank.Pull != PullNone {
		t.Errorf("decoded = %+v", bank)
	}

	out, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != in {
		t.Errorf("Marshal() = %s, want %s", out, in)
	}

	err = json.Unmarshal([]byte(`{"drive":"3mA"}`), &bank)
	if !errors.Is(err, errcode.Schema) {
		t.Errorf("unknown drive error = %v, want schema", err)
	}
}
