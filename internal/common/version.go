package common

import (
	"os"
	"path/filepath"
	"strings"
)

// Build metadata injected via ldflags; defaults identify an untagged dev
// build.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// versionFileName sits next to the binary and supplies build metadata when
// the binary was compiled without ldflags.
const versionFileName = ".version"

// LoadVersionFromFile fills in build metadata from the .version file beside
// the binary. File values only apply where ldflags left the default, so a
// properly stamped binary ignores the file entirely.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(exe), versionFileName))
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		applyVersionValue(strings.TrimSpace(key), strings.TrimSpace(val))
	}
}

func applyVersionValue(key, val string) {
	if val == "" {
		return
	}
	switch key {
	case "version":
		if Version == "dev" {
			Version = val
		}
	case "build":
		if Build == "unknown" {
			Build = val
		}
	case "commit":
		if GitCommit == "unknown" {
			GitCommit = val
		}
	}
}
