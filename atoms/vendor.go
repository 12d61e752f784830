package atoms

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/moffa90/go-hateep/config"
	"github.com/moffa90/go-hateep/errcode"
	"github.com/moffa90/go-hateep/identity"
)

// VendorHeaderSize is the fixed part of the vendor info payload:
// uuid(16) + pid(2) + pver(2) + vslen(1) + pslen(1)
const VendorHeaderSize = 22

// VendorInfo is the vendor info atom payload.
type VendorInfo struct {
	UUID    uuid.UUID
	PID     uint16
	Pver    uint16
	Vendor  string
	Product string
}

// ProductVersion is the customer-visible version, stored as major*100+minor.
type ProductVersion struct {
	Major uint16
	Minor uint16
}

// SplitProductVersion is the inverse of ProductVersion.Pack.
func SplitProductVersion(v uint16) ProductVersion {
	return ProductVersion{Major: v / 100, Minor: v % 100}
}

// Pack returns major*100+minor.
func (v ProductVersion) Pack() (uint16, error) {
	if v.Minor >= 100 {
		return 0, errcode.Field(errcode.Constraint, "pver", "minor version %d exceeds 99", v.Minor)
	}
	packed := uint32(v.Major)*100 + uint32(v.Minor)
	if packed > 0xFFFF {
		return 0, errcode.Field(errcode.Constraint, "pver", "version %s does not fit 16 bits", v)
	}
	return uint16(packed), nil
}

func (v ProductVersion) String() string {
	return fmt.Sprintf("%d.%02d", v.Major, v.Minor)
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// NormalizeProduct replaces every line break in s with a single space.
func NormalizeProduct(s string) string {
	return lineBreaks.Replace(s)
}

// checkText rejects strings the vendor atom cannot carry.
func checkText(field, s string, limit int) error {
	if limit > 0 && len(s) > limit {
		return errcode.Field(errcode.Constraint, field, "string too long: %d bytes (max: %d)", len(s), limit)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 0x80:
			return errcode.Field(errcode.Constraint, field, "non-ASCII byte 0x%02X at position %d", c, i)
		case c < 0x20 || c == 0x7F:
			return errcode.Field(errcode.Constraint, field, "control character 0x%02X at position %d", c, i)
		}
	}
	return nil
}

// EncodeVendor builds the vendor info payload.
//
//	[UUID(16, reversed)][PID(2, LE)][PVER(2, LE)][VSLEN][PSLEN][VSTR...][PSTR...]
//
// The product string is normalized with NormalizeProduct first.
func EncodeVendor(v VendorInfo) ([]byte, error) {
	product := NormalizeProduct(v.Product)
	if err := checkText("vstr", v.Vendor, config.MaxStringLen); err != nil {
		return nil, err
	}
	if err := checkText("pstr", product, config.MaxStringLen); err != nil {
		return nil, err
	}

	id := identity.Reversed(v.UUID)
	buf := make([]byte, 0, VendorHeaderSize+len(v.Vendor)+len(product))
	buf = append(buf, id[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, v.PID)
	buf = binary.LittleEndian.AppendUint16(buf, v.Pver)
	buf = append(buf, byte(len(v.Vendor)), byte(len(product)))
	buf = append(buf, v.Vendor...)
	buf = append(buf, product...)
	return buf, nil
}

// DecodeVendor parses a vendor info payload.
func DecodeVendor(data []byte) (*VendorInfo, error) {
	if len(data) < VendorHeaderSize {
		return nil, errcode.New(errcode.Framing, "decode vendor info",
			"payload is %d bytes, minimum is %d", len(data), VendorHeaderSize)
	}

	id, err := identity.FromReversed(data[0:16])
	if err != nil {
		return nil, errcode.Wrap(errcode.Framing, "decode vendor info", err)
	}
	vslen, pslen := int(data[20]), int(data[21])
	if want := VendorHeaderSize + vslen + pslen; len(data) != want {
		return nil, errcode.New(errcode.Framing, "decode vendor info",
			"payload is %d bytes, string lengths %d+%d require %d", len(data), vslen, pslen, want)
	}

	return &VendorInfo{
		UUID:    id,
		PID:     binary.LittleEndian.Uint16(data[16:18]),
		Pver:    binary.LittleEndian.Uint16(data[18:20]),
		Vendor:  string(data[VendorHeaderSize : VendorHeaderSize+vslen]),
		Product: string(data[VendorHeaderSize+vslen:]),
	}, nil
}
