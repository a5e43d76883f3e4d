// Package version carries the build version and the configuration
// compatibility gate.
package version

// Version is the pipeline build version, set at build time:
// -ldflags "-X github.com/aegis-lab/aegis-trading/internal/version.Version=1.2.3"
// The default "main" indicates a development build.
var Version = "main"

// GetVersion returns the current build version.
func GetVersion() string {
	return Version
}
