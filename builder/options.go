package builder

import (
	"github.com/moffa90/go-hateep/config"
	"github.com/moffa90/go-hateep/eep"
)

// Config holds the builder configuration.
type Config struct {
	// ProgressCallback is called during Build to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// OnOverride is called when an override replaces a configured value (optional)
	OnOverride OverrideCallback

	// Templates resolves included templates by name
	Templates config.TemplateLookup

	// Overrides supply per-board values
	Overrides config.Overrides

	// SecondBank enables the bank 1 gpio map atom
	SecondBank bool

	// Checksum is the atom checksum; nil means CRC-16/XMODEM
	Checksum eep.Checksum

	// VerifyAfterBuild decodes every built image and checks that it
	// reproduces the resolved configuration
	VerifyAfterBuild bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		SecondBank:       true,
		VerifyAfterBuild: true,
	}
}

// Option is a functional option for configuring the Builder.
type Option func(*Config)

// WithProgressCallback sets a callback function to track build progress.
//
// Example:
//
//	b := builder.New(
//	    builder.WithProgressCallback(func(p builder.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the builder operations.
//
// Example:
//
//	b := builder.New(builder.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithOverrideCallback sets a callback invoked for every override that
// replaces a value present in the definition.
func WithOverrideCallback(callback OverrideCallback) Option {
	return func(c *Config) {
		c.OnOverride = callback
	}
}

// WithTemplateLookup sets the resolver for included templates.
func WithTemplateLookup(lookup config.TemplateLookup) Option {
	return func(c *Config) {
		c.Templates = lookup
	}
}

// WithTemplateDir resolves included templates from JSON files in dir.
//
// Example:
//
//	b := builder.New(builder.WithTemplateDir("./templates"))
func WithTemplateDir(dir string) Option {
	return func(c *Config) {
		c.Templates = config.DirLookup(dir)
	}
}

// WithSerial overrides the serial number.
func WithSerial(serial uint32) Option {
	return func(c *Config) {
		c.Overrides.Serial = &serial
	}
}

// WithEndTestDate overrides the end-of-test date.
//
// Example:
//
//	b := builder.New(builder.WithEndTestDate(config.Today()))
func WithEndTestDate(d config.Date) Option {
	return func(c *Config) {
		c.Overrides.EDate = &d
	}
}

// WithMAC overrides the primary MAC address.
func WithMAC(mac config.MAC) Option {
	return func(c *Config) {
		c.Overrides.MAC = &mac
	}
}

// WithSecondBank enables or disables the bank 1 gpio map atom.
// Default is true. When disabled, definitions with two banks are rejected.
func WithSecondBank(enabled bool) Option {
	return func(c *Config) {
		c.SecondBank = enabled
	}
}

// WithChecksum selects the atom checksum used for building and inspecting.
//
// Example:
//
//	b := builder.New(builder.WithChecksum(eep.CRC16ARC))
func WithChecksum(checksum eep.Checksum) Option {
	return func(c *Config) {
		c.Checksum = checksum
	}
}

// WithVerifyAfterBuild enables or disables decoding the built image again.
// Default is true.
func WithVerifyAfterBuild(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterBuild = verify
	}
}

func (c Config) codecOptions() []eep.Option {
	if c.Checksum == nil {
		return nil
	}
	return []eep.Option{eep.WithChecksum(c.Checksum)}
}
