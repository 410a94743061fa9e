package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuildVars(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
	Version, GitCommit, BuildDate = v, commit, date
}

func TestGetBuildInfo_Defaults(t *testing.T) {
	info := GetBuildInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
}

func TestGetBuildInfo_ParsesValidDate(t *testing.T) {
	withBuildVars(t, "v1.0.0", "abc123", "2026-01-13T20:00:00Z")

	info := GetBuildInfo()

	want, err := time.Parse(time.RFC3339, "2026-01-13T20:00:00Z")
	require.NoError(t, err)
	assert.True(t, info.BuildTime.Equal(want))
}

func TestGetBuildInfo_InvalidDateLeavesBuildTimeZero(t *testing.T) {
	withBuildVars(t, "v1.0.0", "abc123", "yesterday")

	assert.True(t, GetBuildInfo().BuildTime.IsZero())
}

func TestBuildInfoString(t *testing.T) {
	withBuildVars(t, "v1.2.3", "deadbeef", "2026-01-17T15:00:00Z")

	s := GetBuildInfo().String()
	assert.Contains(t, s, "formrelay v1.2.3")
	assert.Contains(t, s, "commit: deadbeef")
	assert.Contains(t, s, "built: 2026-01-17T15:00:00Z")
}
