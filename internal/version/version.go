// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Report the VCS revision the binary was built from.
package version

import (
	"fmt"
	"runtime/debug"

	"github.com/poruru-code/canary-topology/internal/meta"
)

var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the short VCS revision, "(dirty)" suffixed when the
// tree was modified, or "dev" when no build info is embedded.
func GetVersion() string {
	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}
	revision, modified := "", false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if modified {
		return revision + " (dirty)"
	}
	return revision
}

// Banner formats the version for the `version` command.
func Banner() string {
	return fmt.Sprintf("%s %s", meta.AppName, GetVersion())
}
