// Package version exposes build metadata stamped in via ldflags:
//
//	go build -ldflags "-X github.com/asagaorino0/formlink-api/internal/version.Version=1.2.0 ..."
package version

import (
	"fmt"
	"runtime"
)

// Set at build time; the defaults identify a local dev build.
var (
	Version = "0.0.0-dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build metadata reported by the health endpoint and the
// startup log.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get returns the build info.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
}

// String returns "version (commit) built date".
func (i Info) String() string {
	return fmt.Sprintf("%s (%s) built %s", i.Version, i.Commit, i.Date)
}

// Short returns the version alone, for response headers and health bodies.
func (i Info) Short() string {
	return i.Version
}
