package eep

import (
	"encoding/binary"
	"fmt"

	"github.com/moffa90/go-hateep/errcode"
)

// encoderState tracks where an Encoder is in the build sequence.
type encoderState int

const (
	stateEmpty encoderState = iota
	stateHeaderReserved
	stateAtomsAppended
	stateFinalized
)

func (s encoderState) String() string {
	switch s {
	case stateEmpty:
		return "empty"
	case stateHeaderReserved:
		return "header reserved"
	case stateAtomsAppended:
		return "atoms appended"
	case stateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures an Encoder or Decoder.
type Option func(*codecConfig)

type codecConfig struct {
	checksum Checksum
}

func defaultCodecConfig() codecConfig {
	return codecConfig{checksum: CRC16}
}

// WithChecksum selects the atom checksum. The default is CRC16 (CRC-16/XMODEM).
func WithChecksum(c Checksum) Option {
	return func(cfg *codecConfig) {
		if c != nil {
			cfg.checksum = c
		}
	}
}

// Encoder assembles atoms into an image.
//
// The encoder moves through Empty → HeaderReserved → AtomsAppended → Finalized.
// Atom counts are assigned in append order; the layout rules (vendor info,
// gpio map and device tree exactly once, in that order, first) are checked
// when the image is finalized. An Encoder is not safe for concurrent use.
//
// Example:
//
//	enc := eep.NewEncoder()
//	_ = enc.Append(eep.TypeVendorInfo, vendor)
//	_ = enc.Append(eep.TypeGPIOMap, gpio)
//	_ = enc.Append(eep.TypeLinuxDT, []byte("my-overlay"))
//	image, err := enc.Finalize()
type Encoder struct {
	cfg   codecConfig
	state encoderState
	atoms []*Atom
	size  int
}

// NewEncoder returns an encoder with the header space reserved.
func NewEncoder(opts ...Option) *Encoder {
	cfg := defaultCodecConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Encoder{cfg: cfg, state: stateEmpty}
	e.size = HeaderSize
	e.state = stateHeaderReserved
	return e
}

// Append adds an atom with the given type and payload. The payload is copied.
func (e *Encoder) Append(t AtomType, data []byte) error {
	if e.state == stateFinalized {
		return errcode.New(errcode.Structural, "append atom", "encoder already finalized")
	}
	if !t.Valid() {
		return &errcode.E{
			C:        errcode.Structural,
			Op:       "append atom",
			AtomType: uint16(t),
			Index:    len(e.atoms),
			Offset:   -1,
			Msg:      fmt.Sprintf("invalid atom type 0x%04X", uint16(t)),
		}
	}
	if len(e.atoms) >= 0xFFFF {
		return errcode.New(errcode.Constraint, "append atom", "too many atoms")
	}

	atom := &Atom{
		Type:  t,
		Count: uint16(len(e.atoms)),
		Data:  append([]byte(nil), data...),
	}
	if e.size+atom.Size() > MaxImageSize {
		return &errcode.E{
			C:        errcode.Constraint,
			Op:       "append atom",
			AtomType: uint16(t),
			Index:    len(e.atoms),
			Offset:   e.size,
			Msg:      fmt.Sprintf("image would exceed %d bytes", MaxImageSize),
		}
	}

	e.atoms = append(e.atoms, atom)
	e.size += atom.Size()
	e.state = stateAtomsAppended
	return nil
}

// Len returns the current encoded image length (eeplen).
func (e *Encoder) Len() int {
	return e.size
}

// Finalize validates the atom layout and serializes the image.
// The encoder cannot be used after a successful Finalize.
func (e *Encoder) Finalize() ([]byte, error) {
	if e.state == stateFinalized {
		return nil, errcode.New(errcode.Structural, "finalize image", "encoder already finalized")
	}

	types := make([]AtomType, len(e.atoms))
	for i, a := range e.atoms {
		types[i] = a.Type
	}
	if err := validateLayout("finalize image", types); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, e.size)
	buf = appendHeader(buf, Header{
		Signature: Signature,
		Version:   FormatVersion,
		NumAtoms:  uint16(len(e.atoms)),
		EEPLen:    uint32(e.size),
	})
	for _, a := range e.atoms {
		buf = e.appendAtom(buf, a)
	}

	e.state = stateFinalized
	return buf, nil
}

// Atoms returns the atoms appended so far, with counts and, after
// Finalize, checksums filled in.
func (e *Encoder) Atoms() []*Atom {
	return e.atoms
}

// appendHeader serializes the header.
//
//	[SIGNATURE(4)][VERSION][RESERVED][NUMATOMS_L][NUMATOMS_H][EEPLEN(4, LE)]
func appendHeader(buf []byte, h Header) []byte {
	buf = append(buf, h.Signature[:]...)
	buf = append(buf, h.Version, h.Reserved)
	buf = binary.LittleEndian.AppendUint16(buf, h.NumAtoms)
	buf = binary.LittleEndian.AppendUint32(buf, h.EEPLen)
	return buf
}

// appendAtom serializes one atom and records its checksum.
//
//	[TYPE_L][TYPE_H][COUNT_L][COUNT_H][DLEN(4, LE)][DATA...][CRC_L][CRC_H]
func (e *Encoder) appendAtom(buf []byte, a *Atom) []byte {
	start := len(buf)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(a.Type))
	buf = binary.LittleEndian.AppendUint16(buf, a.Count)
	buf = binary.LittleEndian.AppendUint32(buf, a.DLen())
	buf = append(buf, a.Data...)

	a.CRC = e.cfg.checksum(buf[start:])
	buf = binary.LittleEndian.AppendUint16(buf, a.CRC)
	return buf
}

// Encode builds an image from atoms in the given order. Count and CRC
// fields of the input are ignored.
func Encode(atoms []*Atom, opts ...Option) ([]byte, error) {
	enc := NewEncoder(opts...)
	for _, a := range atoms {
		if err := enc.Append(a.Type, a.Data); err != nil {
			return nil, err
		}
	}
	return enc.Finalize()
}
