// Where: internal/infra/config/resolve.go
// What: Project root discovery.
// Why: Let commands run from any directory inside a project.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru-code/canary-topology/internal/constants"
	"github.com/poruru-code/canary-topology/internal/meta"
)

var errProjectRootNotFound = errors.New("project root not found")

// ResolveProjectRoot determines the project root.
// Priority order.
// 1. CANARY_PROJECT_DIR (validated as root or searched upward).
// 2. Upward search for canary.yaml from startDir.
func ResolveProjectRoot(startDir string) (string, error) {
	if dir := strings.TrimSpace(os.Getenv(constants.EnvProjectDir)); dir != "" {
		if root, ok := findProjectRoot(dir); ok {
			return root, nil
		}
		return "", fmt.Errorf("%w: %s=%s has no %s", errProjectRootNotFound, constants.EnvProjectDir, dir, meta.ConfigFile)
	}

	if startDir != "" {
		if root, ok := findProjectRoot(startDir); ok {
			return root, nil
		}
	}
	return "", fmt.Errorf("%w: run inside a project with %s or set %s", errProjectRootNotFound, meta.ConfigFile, constants.EnvProjectDir)
}

// findProjectRoot searches upward from path for a directory containing
// canary.yaml.
func findProjectRoot(path string) (string, bool) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, meta.ConfigFile)); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
