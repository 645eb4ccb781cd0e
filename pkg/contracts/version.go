package contracts

import (
	"fmt"
	"runtime"
)

// Version is the release version.
const Version = "1.0.0"

const (
	// DataFormatVersion versions the JSON shape of survey records.
	DataFormatVersion = "v1"

	// APIVersion versions the HTTP API under /api.
	APIVersion = "v1"
)

// Set by build.go with -ldflags "-X campuspulse/pkg/contracts.BuildTime=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
	APIVersion   string `json:"api_version"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
		APIVersion:   APIVersion,
	}
}

// String is the one-line banner printed by -version flags.
func (v VersionInfo) String() string {
	return fmt.Sprintf("CampusPulse %s (commit %s, built %s, %s %s/%s)",
		v.Version, v.GitCommit, v.BuildTime, v.GoVersion, v.OS, v.Architecture)
}
