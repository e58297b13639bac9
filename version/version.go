// Package version provides the kycflow version.
package version

// version is set by ldflags at release time.
var version = "v0.0.0-dev"

// String returns the version string.
func String() string {
	return version
}
