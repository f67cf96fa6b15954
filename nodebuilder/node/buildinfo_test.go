package node

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	// linker variables are unset in tests, the runtime fields are not
	assert.Equal(t, emptyValue, info.GetSemanticVersion())
	assert.Equal(t, emptyValue, info.CommitShortSha())
	assert.Equal(t, fmt.Sprintf("%s/%s", runtime.GOARCH, runtime.GOOS), info.SystemVersion)
	assert.Equal(t, runtime.Version(), info.GolangVersion)
}

func TestGetSemanticVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{name: "unset falls back", version: "", want: emptyValue},
		{name: "v prefix added", version: "1.2.3", want: "v1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := BuildInfo{SemanticVersion: tt.version}
			assert.Equal(t, tt.want, info.GetSemanticVersion())
		})
	}
}

func TestCommitShortSha(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{name: "unset falls back", commit: "", want: emptyValue},
		{name: "short sha kept whole", commit: "abc123", want: "abc123"},
		{name: "exactly seven kept", commit: "abcdefg", want: "abcdefg"},
		{name: "long sha truncated", commit: "abcdefghijk", want: "abcdefg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := BuildInfo{LastCommit: tt.commit}
			assert.Equal(t, tt.want, info.CommitShortSha())
		})
	}
}
