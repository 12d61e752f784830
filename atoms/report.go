package atoms

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-hateep/config"
	"github.com/moffa90/go-hateep/eep"
	"github.com/moffa90/go-hateep/errcode"
	"github.com/moffa90/go-hateep/gpio"
	"github.com/moffa90/go-hateep/identity"
)

// Report is a fully decoded image.
type Report struct {
	Vendor     VendorInfo
	Version    ProductVersion
	GPIO       *gpio.Map
	DeviceTree []byte
	Custom     CustomData

	// CustomText holds the raw custom atom payloads
	CustomText [NumCustomFields]string

	// GPIOBank1 is nil when the image has no bank 1 map
	GPIOBank1 *gpio.Map
}

// Attribute is one entry of the consumer-visible attribute tree.
type Attribute struct {
	Name  string
	Value string
}

// Decode interprets the atoms of a decoded image.
func Decode(img *eep.Image) (*Report, error) {
	r := &Report{}

	vendorAtom, err := require(img, eep.TypeVendorInfo)
	if err != nil {
		return nil, err
	}
	v, err := DecodeVendor(vendorAtom.Data)
	if err != nil {
		return nil, annotate(vendorAtom, err)
	}
	r.Vendor = *v
	r.Version = SplitProductVersion(v.Pver)

	gpioAtom, err := require(img, eep.TypeGPIOMap)
	if err != nil {
		return nil, err
	}
	if r.GPIO, err = gpio.Unpack(gpio.Bank0, gpioAtom.Data); err != nil {
		return nil, annotate(gpioAtom, err)
	}

	dtAtom, err := require(img, eep.TypeLinuxDT)
	if err != nil {
		return nil, err
	}
	r.DeviceTree = append([]byte(nil), dtAtom.Data...)

	customs := img.Custom()
	payloads := make([][]byte, len(customs))
	for i, a := range customs {
		payloads[i] = a.Data
	}
	c, err := DecodeCustom(payloads)
	if err != nil {
		if len(customs) == NumCustomFields {
			var e *errcode.E
			if errors.As(err, &e) {
				for i, codec := range customCodecs {
					if codec.name == e.Field {
						return nil, annotate(customs[i], err)
					}
				}
			}
		}
		return nil, err
	}
	r.Custom = *c
	for i, p := range payloads {
		r.CustomText[i] = string(p)
	}

	if a := img.First(eep.TypeGPIOBank1Map); a != nil {
		if r.GPIOBank1, err = gpio.Unpack(gpio.Bank1, a.Data); err != nil {
			return nil, annotate(a, err)
		}
	}

	return r, nil
}

func require(img *eep.Image, t eep.AtomType) (*eep.Atom, error) {
	a := img.First(t)
	if a == nil {
		return nil, &errcode.E{
			C:        errcode.Structural,
			Op:       "decode atoms",
			AtomType: uint16(t),
			Index:    -1,
			Offset:   -1,
			Msg:      fmt.Sprintf("mandatory %s atom missing", t),
		}
	}
	return a, nil
}

// annotate adds the atom position to an error raised while decoding its payload.
func annotate(a *eep.Atom, err error) error {
	var e *errcode.E
	if errors.As(err, &e) && e.AtomType == 0 {
		e.AtomType = uint16(a.Type)
		e.Index = int(a.Count)
		return err
	}
	return &errcode.E{
		C:        errcode.Of(err),
		Op:       "decode atoms",
		AtomType: uint16(a.Type),
		Index:    int(a.Count),
		Offset:   -1,
		Err:      err,
	}
}

// Attributes returns the attribute tree a running system exposes for this
// image, in a stable order.
func (r *Report) Attributes() []Attribute {
	attrs := []Attribute{
		{"uuid", r.Vendor.UUID.String()},
		{"product_id", fmt.Sprintf("0x%04x", r.Vendor.PID)},
		{"product_ver", fmt.Sprintf("0x%04x", r.Vendor.Pver)},
		{"vendor", r.Vendor.Vendor},
		{"product", r.Vendor.Product},
	}
	for i, text := range r.CustomText {
		attrs = append(attrs, Attribute{CustomField(i).Attribute(), text})
	}
	return attrs
}

// VerifyUUID checks that the stored UUID is the one derived from the
// product fields and serial number.
func (r *Report) VerifyUUID() error {
	want := identity.Derive(r.Vendor.PID, r.Vendor.Pver, r.Custom.ProductRevision, r.Custom.Serial)
	if r.Vendor.UUID != want {
		return errcode.Field(errcode.Constraint, "uuid",
			"stored %s does not match derived %s", r.Vendor.UUID, want)
	}
	return nil
}

// ProductNumber returns the catalogue number for the decoded product.
func (r *Report) ProductNumber() string {
	return fmt.Sprintf("PR1%05dR%02d", r.Vendor.PID, r.Custom.ProductRevision)
}

// Resolved reconstructs the configuration the image was built from. Pin
// comments are not stored in an image and are lost.
func (r *Report) Resolved() *config.Resolved {
	cfg := &config.Resolved{
		Version:           r.Custom.FormatVersion,
		EEPROMDataVersion: r.Custom.DataVersion,
		Vstr:              r.Vendor.Vendor,
		Pstr:              r.Vendor.Product,
		PID:               r.Vendor.PID,
		Prev:              r.Custom.ProductRevision,
		Pver:              r.Vendor.Pver,
		DTStr:             string(r.DeviceTree),
		Serial:            r.Custom.Serial,
		EDate:             r.Custom.EndTestDate,
		MAC:               r.Custom.MAC,
	}
	for _, m := range []*gpio.Map{r.GPIO, r.GPIOBank1} {
		if m != nil {
			cfg.GPIOBanks = append(cfg.GPIOBanks, bankOf(m))
		}
	}
	return cfg
}

func bankOf(m *gpio.Map) config.Bank {
	b := config.Bank{
		Drive:      m.Settings.Drive,
		Slew:       m.Settings.Slew,
		Hysteresis: m.Settings.Hysteresis,
		GPIOs:      []config.Pin{},
	}
	for _, p := range m.Used() {
		b.GPIOs = append(b.GPIOs, config.Pin{GPIO: p.Pin, Fsel: p.Fsel, Pull: p.Pull})
	}
	return b
}
