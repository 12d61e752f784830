package atoms

import (
	"fmt"
	"strconv"

	"github.com/moffa90/go-hateep/config"
	"github.com/moffa90/go-hateep/errcode"
)

// CustomField identifies a custom data atom by its position among the
// custom atoms. The wire format stores no field names.
type CustomField int

// Custom fields in image order.
const (
	FieldFormatVersion CustomField = iota
	FieldSerial
	FieldProductRevision
	FieldEndTestDate
	FieldLot
	FieldMAC
	FieldDataVersion

	// NumCustomFields is the exact number of custom atoms in a valid image
	NumCustomFields = int(FieldDataVersion) + 1
)

// LotReserved is the only accepted lot/batch value until the field is defined.
const LotReserved = "0"

// CustomData holds the decoded custom fields.
type CustomData struct {
	FormatVersion   uint16
	Serial          uint32
	ProductRevision uint16
	EndTestDate     config.Date
	Lot             string
	MAC             config.MAC

	// DataVersion is the EEPROM content version; 0 marks an unreleased image
	DataVersion uint16
}

type customCodec struct {
	name   string
	encode func(c *CustomData) (string, error)
	decode func(s string, c *CustomData) error
}

var customCodecs = [NumCustomFields]customCodec{
	FieldFormatVersion: {
		name:   "format_version",
		encode: func(c *CustomData) (string, error) { return strconv.FormatUint(uint64(c.FormatVersion), 10), nil },
		decode: func(s string, c *CustomData) (err error) {
			c.FormatVersion, err = parseUint16(s)
			return err
		},
	},
	FieldSerial: {
		name:   "serial",
		encode: func(c *CustomData) (string, error) { return strconv.FormatUint(uint64(c.Serial), 10), nil },
		decode: func(s string, c *CustomData) error {
			v, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return fmt.Errorf("%q is not a 32-bit decimal value", s)
			}
			c.Serial = uint32(v)
			return nil
		},
	},
	FieldProductRevision: {
		name:   "prev",
		encode: func(c *CustomData) (string, error) { return strconv.FormatUint(uint64(c.ProductRevision), 10), nil },
		decode: func(s string, c *CustomData) (err error) {
			c.ProductRevision, err = parseUint16(s)
			return err
		},
	},
	FieldEndTestDate: {
		name: "edate",
		encode: func(c *CustomData) (string, error) {
			if c.EndTestDate.IsZero() {
				return "", fmt.Errorf("end test date is not set")
			}
			s := c.EndTestDate.String()
			if _, err := config.ParseDate(s); err != nil {
				return "", err
			}
			return s, nil
		},
		decode: func(s string, c *CustomData) (err error) {
			c.EndTestDate, err = config.ParseDate(s)
			return err
		},
	},
	FieldLot: {
		name: "lot",
		encode: func(c *CustomData) (string, error) {
			if c.Lot != "" && c.Lot != LotReserved {
				return "", fmt.Errorf("lot %q is reserved and must be %q", c.Lot, LotReserved)
			}
			return LotReserved, nil
		},
		decode: func(s string, c *CustomData) error {
			if s != LotReserved {
				return fmt.Errorf("lot %q is reserved and must be %q", s, LotReserved)
			}
			c.Lot = s
			return nil
		},
	},
	FieldMAC: {
		name:   "mac",
		encode: func(c *CustomData) (string, error) { return c.MAC.String(), nil },
		decode: func(s string, c *CustomData) (err error) {
			c.MAC, err = config.ParseColonMAC(s)
			return err
		},
	},
	FieldDataVersion: {
		name:   "eeprom_data_version",
		encode: func(c *CustomData) (string, error) { return strconv.FormatUint(uint64(c.DataVersion), 10), nil },
		decode: func(s string, c *CustomData) (err error) {
			c.DataVersion, err = parseUint16(s)
			return err
		},
	},
}

func (f CustomField) String() string {
	if f < 0 || int(f) >= NumCustomFields {
		return fmt.Sprintf("custom_%d", int(f))
	}
	return customCodecs[f].name
}

// Attribute returns the consumer-visible attribute name, custom_0 to custom_6.
func (f CustomField) Attribute() string {
	return fmt.Sprintf("custom_%d", int(f))
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is not a 16-bit decimal value", s)
	}
	return uint16(v), nil
}

// EncodeCustom returns the ASCII payloads of the custom atoms in field order.
func EncodeCustom(c *CustomData) ([NumCustomFields][]byte, error) {
	var out [NumCustomFields][]byte
	for i, codec := range customCodecs {
		s, err := codec.encode(c)
		if err != nil {
			return out, &errcode.E{
				C:      errcode.Constraint,
				Op:     "encode custom data",
				Field:  codec.name,
				Index:  -1,
				Offset: -1,
				Err:    err,
			}
		}
		out[i] = []byte(s)
	}
	return out, nil
}

// DecodeCustom parses the custom atom payloads. Exactly NumCustomFields
// payloads are required.
func DecodeCustom(payloads [][]byte) (*CustomData, error) {
	if len(payloads) != NumCustomFields {
		return nil, errcode.New(errcode.Structural, "decode custom data",
			"found %d custom atoms, expected %d", len(payloads), NumCustomFields)
	}

	c := &CustomData{}
	for i, codec := range customCodecs {
		if err := checkText(codec.name, string(payloads[i]), 0); err != nil {
			return nil, err
		}
		if err := codec.decode(string(payloads[i]), c); err != nil {
			return nil, &errcode.E{
				C:      errcode.Constraint,
				Op:     "decode custom data",
				Field:  codec.name,
				Index:  -1,
				Offset: -1,
				Err:    err,
			}
		}
	}
	return c, nil
}
