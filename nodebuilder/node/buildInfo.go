package node

import (
	"fmt"
	"runtime"
)

// build info set by the linker during build
var (
	buildTime       string
	lastCommit      string
	semanticVersion string
)

const emptyValue = "unknown"

// BuildInfo stores all necessary information for the current build.
type BuildInfo struct {
	BuildTime       string
	LastCommit      string
	SemanticVersion string
	SystemVersion   string
	GolangVersion   string
}

// GetSemanticVersion returns the semantic version of the build.
func (b *BuildInfo) GetSemanticVersion() string {
	if b.SemanticVersion == "" {
		return emptyValue
	}

	return "v" + b.SemanticVersion
}

// CommitShortSha returns the short SHA of the build's last commit.
func (b *BuildInfo) CommitShortSha() string {
	if b.LastCommit == "" {
		return emptyValue
	}
	if len(b.LastCommit) < 7 {
		return b.LastCommit
	}

	return b.LastCommit[:7]
}

// GetBuildInfo returns information about the current build.
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		BuildTime:       buildTime,
		LastCommit:      lastCommit,
		SemanticVersion: semanticVersion,
		SystemVersion:   fmt.Sprintf("%s/%s", runtime.GOARCH, runtime.GOOS),
		GolangVersion:   runtime.Version(),
	}
}
