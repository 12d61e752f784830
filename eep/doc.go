// Package eep implements the binary HAT EEPROM image format.
//
// # Image Layout
//
// An image is a fixed header followed by a sequence of atoms:
//
//	Header: [SIGNATURE(4)="R-Pi"][VERSION=1][RESERVED=0][NUMATOMS(2)][EEPLEN(4)]
//	Atom:   [TYPE(2)][COUNT(2)][DLEN(4)][DATA(DLEN-2)][CRC16(2)]
//
// All numeric fields are little-endian. COUNT increments from 0 in image order,
// DLEN includes the two checksum bytes, and EEPLEN is the header size plus the
// encoded size of every atom. The checksum covers TYPE through DATA.
//
// The first three atoms are always vendor info (0x0001), GPIO map (0x0002)
// and device tree (0x0003). Custom data atoms (0x0004) and an optional bank 1
// GPIO map (0x0006) follow.
//
// # Encoding
//
// Use an Encoder, or Encode for a prepared slice of atoms:
//
//	image, err := eep.Encode([]*eep.Atom{
//	    {Type: eep.TypeVendorInfo, Data: vendor},
//	    {Type: eep.TypeGPIOMap, Data: gpio},
//	    {Type: eep.TypeLinuxDT, Data: []byte("revpi-example")},
//	})
//
// # Decoding
//
//	img, err := eep.Decode(data)
//	for _, a := range img.Atoms {
//	    fmt.Printf("#%d %s: %d bytes\n", a.Count, a.Type, len(a.Data))
//	}
//
// # Error Handling
//
// Errors carry an errcode kind: Structural for layout violations, Checksum for
// CRC mismatches and Framing for signature, version or length problems. Every
// error names the atom index and byte offset where applicable.
package eep
