package builder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/moffa90/go-hateep/atoms"
	"github.com/moffa90/go-hateep/config"
	"github.com/moffa90/go-hateep/eep"
	"github.com/moffa90/go-hateep/errcode"
	"github.com/moffa90/go-hateep/identity"
)

// Builder turns configuration definitions into EEPROM images and inspects
// existing images.
//
// Builder is safe for concurrent use after initialization as long as the
// configured callbacks are.
type Builder struct {
	config Config
}

// Result is a built image together with the values it was built from.
type Result struct {
	// Image is the complete EEPROM image
	Image []byte

	// Config is the resolved configuration
	Config *config.Resolved

	// Atoms are the encoded atoms with counts and checksums filled in
	Atoms []*eep.Atom

	// UUID is the derived product instance identifier
	UUID uuid.UUID

	// Version is the product version split into major and minor
	Version atoms.ProductVersion

	// ProductNumber is the catalogue number, PR1{pid:05}R{prev:02}
	ProductNumber string
}

// New creates a new Builder with the given options.
//
// Example:
//
//	b := builder.New(
//	    builder.WithTemplateDir("./templates"),
//	    builder.WithSerial(21389),
//	    builder.WithEndTestDate(config.Today()),
//	)
func New(opts ...Option) *Builder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{config: cfg}
}

// Build performs the complete build sequence:
//  1. Resolve the definition against its template and overrides
//  2. Build the atom payloads
//  3. Encode the atoms into an image
//  4. Decode the image again and compare (unless disabled)
//
// No image is returned on error. The operation can be cancelled via context.
//
// Example:
//
//	def, _ := config.ParseFile("board.json")
//	res, err := b.Build(context.Background(), def)
func (b *Builder) Build(ctx context.Context, def *config.Definition) (*Result, error) {
	if def == nil {
		return nil, fmt.Errorf("definition cannot be nil")
	}

	startTime := time.Now()

	// Phase 1: Resolve
	b.reportProgress(Progress{Phase: PhaseResolving})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cancelled: %w", err)
	}

	resolver := &config.Resolver{
		Lookup:     b.config.Templates,
		Overrides:  b.config.Overrides,
		OnOverride: b.override,
	}
	resolved, err := resolver.Resolve(def)
	if err != nil {
		b.logError("resolve failed", "error", err)
		return nil, fmt.Errorf("resolve: %w", err)
	}

	b.logDebug("resolved definition",
		"pid", fmt.Sprintf("0x%04X", resolved.PID),
		"pver", atoms.SplitProductVersion(resolved.Pver),
		"prev", resolved.Prev,
		"serial", resolved.Serial,
		"banks", len(resolved.GPIOBanks),
	)

	// Phase 2: Build atom payloads
	b.reportProgress(Progress{
		Phase:       PhaseBuilding,
		Percentage:  10,
		ElapsedTime: time.Since(startTime),
	})

	list, err := atoms.Build(resolved, atoms.WithSecondBank(b.config.SecondBank))
	if err != nil {
		b.logError("build atoms failed", "error", err)
		return nil, fmt.Errorf("build atoms: %w", err)
	}

	// Phase 3: Encode
	enc := eep.NewEncoder(b.config.codecOptions()...)
	for i, a := range list {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled: %w", err)
		}

		if err := enc.Append(a.Type, a.Data); err != nil {
			return nil, fmt.Errorf("append atom %d (%s): %w", i, a.Type, err)
		}

		// Report progress (20% to 80%)
		b.reportProgress(Progress{
			Phase:        PhaseEncoding,
			CurrentAtom:  i + 1,
			TotalAtoms:   len(list),
			Percentage:   20 + (float64(i+1)/float64(len(list)))*60,
			BytesWritten: enc.Len(),
			ElapsedTime:  time.Since(startTime),
		})
	}

	image, err := enc.Finalize()
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	// Phase 4: Verify
	if b.config.VerifyAfterBuild {
		b.reportProgress(Progress{
			Phase:        PhaseVerifying,
			CurrentAtom:  len(list),
			TotalAtoms:   len(list),
			Percentage:   85,
			BytesWritten: len(image),
			ElapsedTime:  time.Since(startTime),
		})

		if err := b.verify(image); err != nil {
			b.logError("verification failed", "error", err)
			return nil, err
		}
	}

	id := identity.Derive(resolved.PID, resolved.Pver, resolved.Prev, resolved.Serial)

	b.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentAtom:  len(list),
		TotalAtoms:   len(list),
		Percentage:   100,
		BytesWritten: len(image),
		ElapsedTime:  time.Since(startTime),
	})

	b.logInfo("image built",
		"bytes", len(image),
		"atoms", len(list),
		"uuid", id.String(),
		"duration", time.Since(startTime),
	)

	return &Result{
		Image:         image,
		Config:        resolved,
		Atoms:         enc.Atoms(),
		UUID:          id,
		Version:       atoms.SplitProductVersion(resolved.Pver),
		ProductNumber: resolved.ProductNumber(),
	}, nil
}

// BuildFile parses the definition at path and builds it.
func (b *Builder) BuildFile(ctx context.Context, path string) (*Result, error) {
	def, err := config.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, def)
}

// verify decodes image and checks that rebuilding the decoded configuration
// yields the same bytes.
func (b *Builder) verify(image []byte) error {
	report, err := b.Inspect(image)
	if err != nil {
		return &VerificationError{Message: err.Error()}
	}
	if err := CheckIdentity(report); err != nil {
		return &VerificationError{Message: err.Error()}
	}

	rebuilt, err := atoms.Build(report.Resolved(), atoms.WithSecondBank(b.config.SecondBank))
	if err != nil {
		return &VerificationError{Message: err.Error()}
	}
	again, err := eep.Encode(rebuilt, b.config.codecOptions()...)
	if err != nil {
		return &VerificationError{Message: err.Error()}
	}
	if !bytes.Equal(again, image) {
		return &VerificationError{Message: "decoded configuration does not reproduce the image"}
	}
	return nil
}

// Inspect decodes an image and interprets its atoms. Bytes after the
// header's eeplen are ignored.
//
// Inspect does not check the stored UUID; use CheckIdentity for that.
func (b *Builder) Inspect(image []byte) (*atoms.Report, error) {
	img, err := eep.Decode(image, b.config.codecOptions()...)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b.logDebug("decoded image",
		"eeplen", img.Header.EEPLen,
		"atoms", img.Header.NumAtoms,
	)

	report, err := atoms.Decode(img)
	if err != nil {
		return nil, fmt.Errorf("decode atoms: %w", err)
	}
	return report, nil
}

// InspectReader reads an image from r and inspects it.
func (b *Builder) InspectReader(r io.Reader) (*atoms.Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return b.Inspect(data)
}

// CheckIdentity reports an IdentityMismatchError when the UUID stored in the
// image is not the one derived from its product fields and serial.
func CheckIdentity(r *atoms.Report) error {
	if err := r.VerifyUUID(); err != nil {
		if errcode.Of(err) != errcode.Constraint {
			return err
		}
		return &IdentityMismatchError{
			Stored:  r.Vendor.UUID,
			Derived: identity.Derive(r.Vendor.PID, r.Vendor.Pver, r.Custom.ProductRevision, r.Custom.Serial),
		}
	}
	return nil
}

// override forwards an override notice to the callback and the logger.
func (b *Builder) override(key, from, to string) {
	b.logInfo("override", "key", key, "from", from, "to", to)
	if b.config.OnOverride != nil {
		b.config.OnOverride(key, from, to)
	}
}

// reportProgress calls the progress callback if configured.
func (b *Builder) reportProgress(progress Progress) {
	if b.config.ProgressCallback != nil {
		b.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (b *Builder) logDebug(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (b *Builder) logInfo(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (b *Builder) logError(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Error(msg, keysAndValues...)
	}
}
