package version

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/taxo/pkg/version.Version=v1.2.3"
var Version = "v0.3.0"

// Commit and Date identify the exact build. Both are set by the release
// ldflags and stay "unknown" for local builds.
var (
	Commit = "unknown"
	Date   = "unknown"
)
