// Package version defines the "hyp" CLI version.
package version

var (
	// Version represents the semantic version, set at build time.
	Version = "0.0.0-dev"
	// BuildTime represents the binary built timestamp.
	BuildTime string
	// GitCommit represents the version.
	GitCommit string
)

type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

var VersionInfo Info

func init() {
	VersionInfo.Version = Version
	VersionInfo.BuildTime = BuildTime
	VersionInfo.GitCommit = GitCommit
}
