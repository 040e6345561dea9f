// Package version holds the build version, overridden at release time via
// -ldflags "-X .../internal/version.Version=v1.2.3".
package version

var Version = "dev"
