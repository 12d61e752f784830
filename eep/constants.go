package eep

// FormatVersion is the EEPROM data format version written to every header.
const FormatVersion = 0x01

// Signature is the 4-byte header magic ("R-Pi" in ASCII).
var Signature = [4]byte{0x52, 0x2D, 0x50, 0x69}

// Layout sizes in bytes.
const (
	// HeaderSize is the fixed header length:
	// signature(4) + version(1) + reserved(1) + numatoms(2) + eeplen(4)
	HeaderSize = 12

	// AtomHeaderSize is the per-atom prefix: type(2) + count(2) + dlen(4)
	AtomHeaderSize = 8

	// ChecksumSize is the trailing CRC-16 of every atom
	ChecksumSize = 2

	// MaxImageSize bounds images accepted by the encoder and decoder.
	// The largest HAT EEPROMs in use are 64 KiB parts.
	MaxImageSize = 64 * 1024
)

// AtomType is the 16-bit type code at the start of every atom.
type AtomType uint16

// Atom type codes.
const (
	// TypeInvalid must never appear in an image
	TypeInvalid AtomType = 0x0000

	// TypeVendorInfo carries UUID, product id/version and vendor/product strings
	TypeVendorInfo AtomType = 0x0001

	// TypeGPIOMap carries the bank 0 GPIO configuration
	TypeGPIOMap AtomType = 0x0002

	// TypeLinuxDT carries the device tree overlay name or blob
	TypeLinuxDT AtomType = 0x0003

	// TypeCustom carries manufacturer custom data
	TypeCustom AtomType = 0x0004

	// TypeGPIOBank1Map carries the bank 1 GPIO configuration
	TypeGPIOBank1Map AtomType = 0x0006

	// TypeInvalidMax must never appear in an image
	TypeInvalidMax AtomType = 0xFFFF
)

// Valid reports whether t may appear in an image produced or accepted by this package.
func (t AtomType) Valid() bool {
	switch t {
	case TypeVendorInfo, TypeGPIOMap, TypeLinuxDT, TypeCustom, TypeGPIOBank1Map:
		return true
	default:
		return false
	}
}

func (t AtomType) String() string {
	switch t {
	case TypeVendorInfo:
		return "vendor info"
	case TypeGPIOMap:
		return "gpio map"
	case TypeLinuxDT:
		return "device tree"
	case TypeCustom:
		return "custom data"
	case TypeGPIOBank1Map:
		return "gpio bank1 map"
	case TypeInvalid, TypeInvalidMax:
		return "invalid"
	default:
		return "reserved"
	}
}
