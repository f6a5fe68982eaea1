// Where: internal/command/project.go
// What: Project resolution shared by synth, graph and publish.
// Why: Apply config file, env overrides and --context flags in one order.
package command

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poruru-code/canary-topology/internal/infra/config"
	"github.com/poruru-code/canary-topology/internal/usecase/synth"
)

type project struct {
	root   string
	config config.ProjectConfig
}

// loadProject resolves the project root, then layers canary.yaml, the
// environment and --context flags, later sources winning.
func loadProject(cli CLI, deps Dependencies) (project, error) {
	path, err := resolveConfigPath(cli, deps)
	if err != nil {
		return project{}, err
	}
	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		return project{}, err
	}
	cfg = config.ApplyEnv(cfg, os.Getenv)
	values, err := config.ParseContextPairs(cli.Context)
	if err != nil {
		return project{}, err
	}
	cfg = config.MergeContext(cfg, values)
	return project{root: filepath.Dir(path), config: cfg}, nil
}

func resolveConfigPath(cli CLI, deps Dependencies) (string, error) {
	if explicit := strings.TrimSpace(cli.Config); explicit != "" {
		return filepath.Abs(explicit)
	}
	getwd := deps.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	resolver := deps.ProjectResolver
	if resolver == nil {
		resolver = config.ResolveProjectRoot
	}
	root, err := resolver(cwd)
	if err != nil {
		return "", err
	}
	return config.ProjectConfigPath(root)
}

func (p project) synthRequest(output, format string, clock func() time.Time) synth.Request {
	return synth.Request{
		ProjectRoot: p.root,
		Config:      p.config,
		OutputDir:   output,
		Format:      format,
		Clock:       clock,
	}
}
