package eep

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-hateep/errcode"
)

// Decode parses an image and validates header, length accounting, atom
// checksums and the mandatory atom layout.
//
// Bytes after eeplen are ignored: EEPROM dumps are usually padded to the
// size of the part.
func Decode(data []byte, opts ...Option) (*Image, error) {
	cfg := defaultCodecConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	if int64(h.EEPLen) > int64(len(data)) {
		return nil, framingError("decode header", 8,
			fmt.Sprintf("eeplen %d exceeds image size %d", h.EEPLen, len(data)))
	}
	if h.EEPLen > MaxImageSize {
		return nil, framingError("decode header", 8,
			fmt.Sprintf("eeplen %d exceeds maximum %d", h.EEPLen, MaxImageSize))
	}

	img := &Image{Header: h, Atoms: make([]*Atom, 0, h.NumAtoms)}
	body := data[:h.EEPLen]
	offset := HeaderSize

	for i := 0; i < int(h.NumAtoms); i++ {
		atom, n, err := decodeAtom(body, offset, i, cfg.checksum)
		if err != nil {
			return nil, err
		}
		img.Atoms = append(img.Atoms, atom)
		offset += n
	}

	if offset != int(h.EEPLen) {
		return nil, framingError("decode image", offset,
			fmt.Sprintf("length mismatch: consumed %d bytes, eeplen is %d", offset, h.EEPLen))
	}

	types := make([]AtomType, len(img.Atoms))
	for i, a := range img.Atoms {
		types[i] = a.Type
	}
	if err := validateLayout("decode image", types); err != nil {
		return nil, err
	}

	return img, nil
}

// DecodeReader reads an image from any io.Reader and decodes it.
func DecodeReader(r io.Reader, opts ...Option) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize*4))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Decode(data, opts...)
}

// ParseFile decodes the image stored at path.
func ParseFile(path string, opts ...Option) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeReader(f, opts...)
}

// decodeHeader parses and checks the fixed header.
//
//	[SIGNATURE(4)][VERSION][RESERVED][NUMATOMS(2, LE)][EEPLEN(4, LE)]
func decodeHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < HeaderSize {
		return h, framingError("decode header", 0,
			fmt.Sprintf("image too short: got %d bytes, minimum is %d", len(data), HeaderSize))
	}

	copy(h.Signature[:], data[0:4])
	h.Version = data[4]
	h.Reserved = data[5]
	h.NumAtoms = binary.LittleEndian.Uint16(data[6:8])
	h.EEPLen = binary.LittleEndian.Uint32(data[8:12])

	if h.Signature != Signature {
		return h, framingError("decode header", 0,
			fmt.Sprintf("invalid signature % X, expected % X", h.Signature, Signature))
	}
	if h.Version != FormatVersion {
		return h, framingError("decode header", 4,
			fmt.Sprintf("unsupported format version 0x%02X", h.Version))
	}
	if h.Reserved != 0 {
		return h, framingError("decode header", 5,
			fmt.Sprintf("reserved byte is 0x%02X, must be 0", h.Reserved))
	}
	return h, nil
}

// decodeAtom parses the atom starting at offset and returns it with its encoded size.
func decodeAtom(body []byte, offset, index int, checksum Checksum) (*Atom, int, error) {
	if offset+AtomHeaderSize > len(body) {
		return nil, 0, &errcode.E{
			C:      errcode.Framing,
			Op:     "decode atom",
			Index:  index,
			Offset: offset,
			Msg:    fmt.Sprintf("atom header overruns eeplen %d", len(body)),
		}
	}

	t := AtomType(binary.LittleEndian.Uint16(body[offset : offset+2]))
	count := binary.LittleEndian.Uint16(body[offset+2 : offset+4])
	dlen := binary.LittleEndian.Uint32(body[offset+4 : offset+8])

	if dlen < ChecksumSize {
		return nil, 0, &errcode.E{
			C:        errcode.Framing,
			Op:       "decode atom",
			AtomType: uint16(t),
			Index:    index,
			Offset:   offset + 4,
			Msg:      fmt.Sprintf("dlen %d is shorter than the checksum", dlen),
		}
	}
	end := int64(offset) + AtomHeaderSize + int64(dlen)
	if end > int64(len(body)) {
		return nil, 0, &errcode.E{
			C:        errcode.Framing,
			Op:       "decode atom",
			AtomType: uint16(t),
			Index:    index,
			Offset:   offset + 4,
			Msg:      fmt.Sprintf("dlen %d overruns eeplen %d", dlen, len(body)),
		}
	}

	crcAt := int(end) - ChecksumSize
	expected := binary.LittleEndian.Uint16(body[crcAt:int(end)])
	actual := checksum(body[offset:crcAt])
	if expected != actual {
		return nil, 0, &errcode.E{
			C:        errcode.Checksum,
			Op:       "decode atom",
			AtomType: uint16(t),
			Index:    index,
			Offset:   crcAt,
			Msg:      fmt.Sprintf("checksum mismatch: stored 0x%04X, computed 0x%04X", expected, actual),
		}
	}

	if !t.Valid() {
		return nil, 0, &errcode.E{
			C:        errcode.Framing,
			Op:       "decode atom",
			AtomType: uint16(t),
			Index:    index,
			Offset:   offset,
			Msg:      fmt.Sprintf("invalid atom type 0x%04X", uint16(t)),
		}
	}
	if int(count) != index {
		return nil, 0, &errcode.E{
			C:        errcode.Framing,
			Op:       "decode atom",
			AtomType: uint16(t),
			Index:    index,
			Offset:   offset + 2,
			Msg:      fmt.Sprintf("atom count %d out of sequence", count),
		}
	}

	atom := &Atom{
		Type:  t,
		Count: count,
		Data:  make([]byte, crcAt-(offset+AtomHeaderSize)),
		CRC:   expected,
	}
	copy(atom.Data, body[offset+AtomHeaderSize:crcAt])

	return atom, int(end) - offset, nil
}

func framingError(op string, offset int, msg string) error {
	return &errcode.E{C: errcode.Framing, Op: op, Index: -1, Offset: offset, Msg: msg}
}
