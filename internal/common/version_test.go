package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyVersionValue_OnlyFillsDefaults(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() {
		Version, Build, GitCommit = origVersion, origBuild, origCommit
	})

	Version, Build, GitCommit = "dev", "unknown", "unknown"
	applyVersionValue("version", "1.2.3")
	applyVersionValue("build", "2026-08-29")
	applyVersionValue("commit", "abc1234")
	assert.Equal(t, "1.2.3", Version)
	assert.Equal(t, "2026-08-29", Build)
	assert.Equal(t, "abc1234", GitCommit)

	// ldflags-stamped values win over the file.
	applyVersionValue("version", "9.9.9")
	assert.Equal(t, "1.2.3", Version)

	// Unknown keys and empty values are ignored.
	applyVersionValue("flavor", "x")
	applyVersionValue("build", "")
	assert.Equal(t, "2026-08-29", Build)
}
