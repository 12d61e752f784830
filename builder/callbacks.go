package builder

import "time"

// Build phases reported through ProgressCallback.
const (
	PhaseResolving = "resolving"
	PhaseBuilding  = "building"
	PhaseEncoding  = "encoding"
	PhaseVerifying = "verifying"
	PhaseComplete  = "complete"
)

// Progress contains information about the build progress.
// Passed to ProgressCallback during Build.
type Progress struct {
	// Phase describes the current operation phase:
	//   "resolving" - Merging the definition with its template and overrides
	//   "building"  - Building atom payloads
	//   "encoding"  - Framing atoms into the image
	//   "verifying" - Decoding the image and comparing it with the input
	//   "complete"  - Image is ready
	Phase string

	// CurrentAtom is the number of atoms encoded so far
	CurrentAtom int

	// TotalAtoms is the number of atoms in the image, 0 until known
	TotalAtoms int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the image length so far, including the header
	BytesWritten int

	// ElapsedTime is the time elapsed since the build started
	ElapsedTime time.Duration
}

// ProgressCallback is called during Build to report progress.
// Implementations should return quickly.
//
// Example:
//
//	b := builder.New(
//	    builder.WithProgressCallback(func(p builder.Progress) {
//	        fmt.Printf("[%s] %.0f%% - atom %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentAtom, p.TotalAtoms)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the builder.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	b := builder.New(builder.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// OverrideCallback is called when a build option replaces a value the
// definition already set. from and to are display strings.
type OverrideCallback func(key, from, to string)
