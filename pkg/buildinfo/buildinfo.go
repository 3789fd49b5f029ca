package buildinfo

import (
	"runtime"
)

// These vars are set at build time via ldflags:
// -X github.com/otherjamesbrown/conversa/pkg/buildinfo.Version=v0.3.0
// -X github.com/otherjamesbrown/conversa/pkg/buildinfo.Commit=4f1c2aa
// -X github.com/otherjamesbrown/conversa/pkg/buildinfo.BuildTime=2026-10-01T09:00:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds build information for the binary.
type Info struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns build info for the named binary.
func Get(name string) Info {
	return Info{
		Name:      name,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a human-readable one-liner like "v0.3.0 (4f1c2aa, 2026-10-01T09:00:00Z)"
func String() string {
	return Version + " (" + Commit + ", " + BuildTime + ")"
}

// UserAgent returns the value sent in the User-Agent header of outbound API calls.
func UserAgent() string {
	return "conversa/" + Version
}
