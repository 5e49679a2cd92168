// Package version exposes build version information, set at build time
// via -ldflags or recovered from embedded VCS metadata.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/kbukum/livefeed/version.Version=v1.2.0"
var (
	Version = "dev"
	Commit  = ""
)

// Info holds resolved version details.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified"`
}

// Get resolves version information, falling back to the module's
// embedded VCS metadata when the ldflags variables were not set.
func Get() Info {
	info := Info{Version: Version, Commit: Commit}

	if build, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = build.GoVersion
		for _, s := range build.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// Short returns a compact single-line version string.
func Short() string {
	info := Get()
	switch {
	case info.Commit == "":
		return info.Version
	case info.Modified:
		return fmt.Sprintf("%s-%s-modified", info.Version, info.Commit)
	default:
		return fmt.Sprintf("%s-%s", info.Version, info.Commit)
	}
}
