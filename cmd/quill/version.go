package main

import (
	"fmt"
	"runtime/debug"
)

// baseVersion is bumped as part of tagging a release.
const baseVersion = "0.1.0"

// Version reports the CLI version: the module version when installed via
// `go install ...@version`, otherwise the base version, suffixed with the
// VCS revision when built from a checkout.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "v" + baseVersion
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return fmt.Sprintf("v%s-dev+%s", baseVersion, s.Value[:7])
		}
	}
	return "v" + baseVersion + "-dev"
}
