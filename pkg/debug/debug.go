// Package debug provides conditional debug logging for taxo.
//
// Debug logging is enabled by setting the TAXO_DEBUG environment variable:
//
//	TAXO_DEBUG=1 taxo --health
//
// When enabled, debug messages are written to stderr with timestamps so
// they never corrupt the TUI frame on stdout. When disabled (default),
// all debug functions are no-ops.
//
// Usage:
//
//	import "github.com/vanderheijden86/taxo/pkg/debug"
//
//	func load() {
//	    debug.Log("parsed %d categories", len(records))
//	    defer debug.LogEnterExit("load")()
//	}
package debug

import (
	"log"
	"os"
	"time"
)

var (
	// enabled is true when the TAXO_DEBUG env var is set
	enabled bool
	// logger writes to stderr with a [TAXO_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("TAXO_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[TAXO_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging, mainly from
// tests.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[TAXO_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a printf-style debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogEnterExit logs function entry and exit with timing.
//
//	func load() {
//	    defer debug.LogEnterExit("load")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}

// Section logs a section header for visual organization in debug output.
func Section(name string) {
	if !enabled {
		return
	}
	logger.Printf("=== %s ===", name)
}
