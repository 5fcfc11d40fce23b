// Package version reports the version of the program from the information
// embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
)

// ApplicationName is used when the program refers to itself.
const ApplicationName = "sci0play"

// set by the linker for numbered releases
var number string

var revision string
var version string

// Version returns the version string, the vcs revision and whether this is
// a numbered release.
//
// A version of "unreleased" means the program was built from a checkout
// without a release number. A version of "local" means there is no vcs
// information at all, as happens with "go run".
func Version() (string, string, bool) {
	return version, revision, version == number
}

// Title returns the application name with the version for a release or the
// revision otherwise.
func Title() string {
	ver, rev, rel := Version()
	if rel {
		return fmt.Sprintf("%s %s", ApplicationName, ver)
	}
	return fmt.Sprintf("%s (%s)", ApplicationName, rev)
}

func init() {
	var vcs bool
	var modified bool

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}

	switch {
	case revision == "":
		revision = "no revision information"
	case modified:
		revision += "+dirty"
	}

	switch {
	case number != "":
		version = number
	case vcs:
		version = "unreleased"
	default:
		version = "local"
	}
}
