package version

import (
	"runtime"
	"runtime/debug"
)

var version = "dev"

// Module paths whose linked versions are reported.
const (
	buildkitModule = "github.com/moby/buildkit"
	shellModule    = "mvdan.cc/sh/v3"
)

// Version returns the current version string
func Version() string {
	bkVersion := BuildKitVersion()
	if bkVersion != "" {
		return version + " (buildkit " + bkVersion + ")"
	}
	return version
}

// BuildKitVersion returns the linked BuildKit version from build info.
func BuildKitVersion() string {
	return depVersion(buildkitModule)
}

// ShellVersion returns the linked mvdan.cc/sh version from build info.
func ShellVersion() string {
	return depVersion(shellModule)
}

func depVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path == path {
			return dep.Version
		}
	}
	return ""
}

// Info is the machine-readable version report.
type Info struct {
	Version         string `json:"version"`
	BuildKitVersion string `json:"buildkitVersion,omitempty"`
	ShellVersion    string `json:"shellVersion,omitempty"`
	GoVersion       string `json:"goVersion"`
	Platform        string `json:"platform"`
}

// GetInfo collects version details for `pinscan version --json`.
func GetInfo() Info {
	return Info{
		Version:         version,
		BuildKitVersion: BuildKitVersion(),
		ShellVersion:    ShellVersion(),
		GoVersion:       runtime.Version(),
		Platform:        runtime.GOOS + "/" + runtime.GOARCH,
	}
}
