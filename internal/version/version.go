package version

import (
	"fmt"
	"runtime/debug"
)

// Version and Name are resolved at build time. Release builds override
// them via -ldflags:
//
//	go build -ldflags "-X coda-dashboard/internal/version.Version=0.1.1"
var (
	Version = "0.1.1-dev"
	Name    = "Dashboard Integration"
)

// String returns the short version string shown in logs and the status bar.
func String() string {
	return fmt.Sprintf("v%s (%s)", Resolve(), Name)
}

// Resolve returns the build version, preferring the -ldflags override and
// falling back to the module version recorded in build info.
func Resolve() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "unknown"
}
