// Package identity derives the board UUID stored in the vendor info atom.
//
// The identifier is a pure function of the product data, so an image
// regenerated from the same product id, version, revision and serial carries
// the same UUID:
//
//	id := identity.Derive(0x012e, 0x0078, 3, 21389)
//	fmt.Println(id) // 5c088c87-f1a1-4071-965e-55a0fdf1b825
package identity

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/google/uuid"
)

// Version is the UUID version nibble written into derived identifiers.
const Version = 4

// InputSize is the length of the digest input: pid(2) + pver(2) + prev(2) + serial(4).
const InputSize = 10

// Input returns the big-endian digest input for the given product fields.
//
//	[PID_H][PID_L][PVER_H][PVER_L][PREV_H][PREV_L][SERIAL(4, BE)]
func Input(pid, pver, prev uint16, serial uint32) []byte {
	buf := make([]byte, 0, InputSize)
	buf = binary.BigEndian.AppendUint16(buf, pid)
	buf = binary.BigEndian.AppendUint16(buf, pver)
	buf = binary.BigEndian.AppendUint16(buf, prev)
	buf = binary.BigEndian.AppendUint32(buf, serial)
	return buf
}

// Derive returns the MD5 digest of the product fields framed as an RFC 4122
// UUID: the variant bits are set to 10 and the version nibble to Version.
// The remaining 122 bits are the digest bits unchanged.
func Derive(pid, pver, prev uint16, serial uint32) uuid.UUID {
	var id uuid.UUID
	sum := md5.Sum(Input(pid, pver, prev, serial))
	copy(id[:], sum[:])

	id[6] = (id[6] & 0x0f) | Version<<4
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// Reversed returns the bytes of id in reverse order, the layout used inside
// the vendor info atom.
func Reversed(id uuid.UUID) [16]byte {
	var out [16]byte
	for i := range id {
		out[len(id)-1-i] = id[i]
	}
	return out
}

// FromReversed undoes Reversed.
func FromReversed(b []byte) (uuid.UUID, error) {
	if len(b) != 16 {
		_, err := uuid.FromBytes(b)
		return uuid.Nil, err
	}
	var id uuid.UUID
	for i := range b {
		id[len(b)-1-i] = b[i]
	}
	return id, nil
}
