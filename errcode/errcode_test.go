package errcode

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestEError(t *testing.T) {
	err := &E{
		C:        Checksum,
		Op:       "decode atom",
		AtomType: 0x0004,
		Index:    5,
		Offset:   142,
		Msg:      "got 0xBEEF, expected 0x1234",
	}

	errMsg := err.Error()

	for _, want := range []string{"checksum", "decode atom", "0x0004", "atom #5", "offset 142", "0xBEEF"} {
		if !strings.Contains(errMsg, want) {
			t.Errorf("error message should contain %q, got: %s", want, errMsg)
		}
	}
}

func TestEErrorOmitsUnsetContext(t *testing.T) {
	err := Field(Schema, "pid", "missing mandatory key")

	errMsg := err.Error()
	if strings.Contains(errMsg, "atom #") || strings.Contains(errMsg, "offset") {
		t.Errorf("error message should not mention position, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, `field "pid"`) {
		t.Errorf("error message should name the field, got: %s", errMsg)
	}
}

func TestIsThroughWrapping(t *testing.T) {
	base := New(Framing, "decode header", "bad signature")
	wrapped := fmt.Errorf("inspect image: %w", base)

	if !errors.Is(wrapped, Framing) {
		t.Errorf("errors.Is(wrapped, Framing) = false, want true")
	}
	if errors.Is(wrapped, Checksum) {
		t.Errorf("errors.Is(wrapped, Checksum) = true, want false")
	}
}

func TestUnwrap(t *testing.T) {
	err := Wrap(Resolution, "lookup template", io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("wrapped cause not reachable through Unwrap")
	}
}

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "bare code", err: Structural, want: Structural},
		{name: "E", err: New(Constraint, "pack", "x"), want: Constraint},
		{name: "wrapped E", err: fmt.Errorf("outer: %w", New(Schema, "parse", "x")), want: Schema},
		{name: "E wrapping E", err: Wrap(Resolution, "include", New(Schema, "parse", "x")), want: Resolution},
		{name: "plain error", err: errors.New("boom"), want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of(tt.err); got != tt.want {
				t.Errorf("Of() = %q, want %q", got, tt.want)
			}
		})
	}
}
