package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	t.Parallel()

	info := GetInfo()
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(Version(), "dev"))
}
