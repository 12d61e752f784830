package eep

import (
	"fmt"

	"github.com/moffa90/go-hateep/errcode"
)

// Header is the fixed 12-byte EEPROM header.
type Header struct {
	// Signature is the magic, always Signature for valid images
	Signature [4]byte

	// Version is the data format version (FormatVersion)
	Version byte

	// Reserved must be zero
	Reserved byte

	// NumAtoms is the number of atoms following the header
	NumAtoms uint16

	// EEPLen is the total image length including this header
	EEPLen uint32
}

// Atom is a typed, length-prefixed, checksum-protected record.
//
// Callers building an image only set Type and Data; Count and CRC are
// assigned by the Encoder in emission order.
type Atom struct {
	// Type is the atom type code
	Type AtomType

	// Count is the position of the atom in the image, starting at 0
	Count uint16

	// Data is the payload without the trailing checksum
	Data []byte

	// CRC is the checksum over type‖count‖dlen‖data
	CRC uint16
}

// DLen returns the dlen field value: payload length plus the checksum.
func (a *Atom) DLen() uint32 {
	return uint32(len(a.Data)) + ChecksumSize
}

// Size returns the encoded size of the atom in bytes.
func (a *Atom) Size() int {
	return AtomHeaderSize + len(a.Data) + ChecksumSize
}

// Image is a decoded EEPROM image.
type Image struct {
	Header Header
	Atoms  []*Atom
}

// Custom returns the custom data atoms in image order.
func (img *Image) Custom() []*Atom {
	var out []*Atom
	for _, a := range img.Atoms {
		if a.Type == TypeCustom {
			out = append(out, a)
		}
	}
	return out
}

// First returns the first atom of type t, or nil.
func (img *Image) First(t AtomType) *Atom {
	for _, a := range img.Atoms {
		if a.Type == t {
			return a
		}
	}
	return nil
}

// mandatory lists the atoms every image starts with, in order.
var mandatory = [...]AtomType{TypeVendorInfo, TypeGPIOMap, TypeLinuxDT}

// validateLayout checks the atom type sequence: vendor info, gpio map and
// device tree exactly once and in that order before anything else, then custom
// atoms, with at most one bank 1 gpio map anywhere after the mandatory atoms.
func validateLayout(op string, types []AtomType) error {
	seen := make(map[AtomType]int)

	for i, t := range types {
		if prev, dup := seen[t]; dup && t != TypeCustom {
			return &errcode.E{
				C:        errcode.Structural,
				Op:       op,
				AtomType: uint16(t),
				Index:    i,
				Offset:   -1,
				Msg:      fmt.Sprintf("duplicate %s atom (first seen at #%d)", t, prev),
			}
		}
		if _, ok := seen[t]; !ok {
			seen[t] = i
		}

		if i < len(mandatory) && t != mandatory[i] {
			return &errcode.E{
				C:        errcode.Structural,
				Op:       op,
				AtomType: uint16(t),
				Index:    i,
				Offset:   -1,
				Msg:      fmt.Sprintf("ordering violation: found %s atom, expected %s atom", t, mandatory[i]),
			}
		}
	}

	for i, t := range mandatory {
		if _, ok := seen[t]; !ok {
			return &errcode.E{
				C:        errcode.Structural,
				Op:       op,
				AtomType: uint16(t),
				Index:    i,
				Offset:   -1,
				Msg:      fmt.Sprintf("mandatory %s atom missing", t),
			}
		}
	}

	return nil
}
