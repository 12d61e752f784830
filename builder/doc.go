// Package builder provides a high-level API for building and inspecting HAT
// ID EEPROM images.
//
// # Overview
//
// This package orchestrates the complete build sequence:
//   - Resolving a definition against its included template
//   - Applying per-board overrides (serial, end-of-test date, MAC)
//   - Building the atom payloads
//   - Framing the atoms into an image
//   - Decoding the image again to verify it
//
// # Basic Usage
//
//	def, err := config.ParseFile("board.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b := builder.New(builder.WithTemplateDir("./templates"))
//
//	res, err := b.Build(context.Background(), def)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("board.eep", res.Image, 0o644)
//
// # Progress Tracking
//
//	b := builder.New(
//	    builder.WithProgressCallback(func(p builder.Progress) {
//	        fmt.Printf("[%s] %.0f%% - atom %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentAtom, p.TotalAtoms)
//	    }),
//	)
//
// # Configuration Options
//
//	b := builder.New(
//	    builder.WithLogger(myLogger),
//	    builder.WithTemplateLookup(config.MapLookup{"base": tmpl}),
//	    builder.WithSerial(21389),
//	    builder.WithEndTestDate(config.Today()),
//	    builder.WithMAC(mac),
//	    builder.WithSecondBank(true),
//	    builder.WithChecksum(eep.CRC16),
//	    builder.WithVerifyAfterBuild(true),
//	)
//
// Overrides that replace a value present in the definition are logged at
// info level and passed to the callback set with WithOverrideCallback.
//
// # Inspecting Images
//
//	report, err := b.Inspect(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, attr := range report.Attributes() {
//	    fmt.Printf("%s: %s\n", attr.Name, attr.Value)
//	}
//
// Inspect does not require the stored UUID to be the derived one, since
// images written by other tools may carry random identifiers. CheckIdentity
// performs that check.
//
// # Error Handling
//
// Errors from the resolve, build and encode phases carry an errcode kind and
// can be matched with errors.Is:
//
//	if errors.Is(err, errcode.Schema) { ... }
//
// The package adds two error types:
//   - VerificationError: a built image did not decode back to its configuration
//   - IdentityMismatchError: stored UUID differs from the derived one
package builder
