// Package version reports the build that is running
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Build information, set at build time via ldflags:
//
//	-X github.com/teranos/graphscope/version.Version=v0.3.0
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	Modified   bool   `json:"modified,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

var (
	once sync.Once
	info Info
)

// Get returns the current version information. Values not set through ldflags
// fall back to the VCS stamp the Go toolchain embeds in the binary.
func Get() Info {
	once.Do(func() {
		info = Info{
			CommitHash: CommitHash,
			BuildTime:  BuildTime,
			Version:    Version,
			GoVersion:  runtime.Version(),
			Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		}
		if bi, ok := debug.ReadBuildInfo(); ok {
			fromBuildInfo(&info, bi)
		}
	})
	return info
}

func fromBuildInfo(i *Info, bi *debug.BuildInfo) {
	if i.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.CommitHash == "dev" {
				i.CommitHash = s.Value
			}
		case "vcs.time":
			if i.BuildTime == "unknown" {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	commit := i.Short()
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("graphscope %s (commit %s, built %s)", i.Version, commit, i.BuildTime)
}

// Short returns the abbreviated commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
