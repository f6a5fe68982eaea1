// Where: internal/command/init.go
// What: init command (scaffold canary.yaml and handler).
// Why: Give new projects the workshop stack as a starting point.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru-code/canary-topology/internal/domain/rollout"
	"github.com/poruru-code/canary-topology/internal/infra/config"
	"github.com/poruru-code/canary-topology/internal/infra/fileops"
	"github.com/poruru-code/canary-topology/internal/infra/interaction"
	"github.com/poruru-code/canary-topology/internal/meta"
)

var errConfigExists = errors.New(meta.ConfigFile + " already exists (use --force to overwrite)")

const sampleHandler = `import json


def lambda_handler(event, context):
    return {
        "statusCode": 200,
        "headers": {"Content-Type": "application/json"},
        "body": json.dumps({"path": event.get("path"), "message": "hello from canary"}),
    }
`

func runInit(cli CLI, deps Dependencies, out io.Writer) int {
	userInterface, err := commandUI(out, cli)
	if err != nil {
		return exitWithError(out, err)
	}
	getwd := deps.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	root, err := getwd()
	if err != nil {
		return exitWithError(out, err)
	}
	path, err := config.ProjectConfigPath(root)
	if err != nil {
		return exitWithError(out, err)
	}
	if fileops.FileExists(path) && !cli.Init.Force {
		return exitWithError(out, errConfigExists)
	}

	cfg, err := initConfig(cli.Init, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	if err := config.SaveProjectConfig(path, cfg); err != nil {
		return exitWithError(out, err)
	}
	handlerPath, created, err := scaffoldHandler(root, cfg)
	if err != nil {
		return exitWithError(out, err)
	}

	userInterface.Success(fmt.Sprintf("Created %s", path))
	if created {
		userInterface.Info(fmt.Sprintf("Wrote sample handler %s", handlerPath))
	}
	userInterface.Info(fmt.Sprintf("Next: %s synth", meta.AppName))
	return 0
}

func initConfig(flags InitCmd, deps Dependencies) (config.ProjectConfig, error) {
	cfg := config.DefaultProjectConfig()
	prompter := deps.Prompter
	interactive := prompter != nil && deps.interactive()

	switch name := strings.TrimSpace(flags.Name); {
	case name != "":
		cfg.Stack.Name = name
	case interactive:
		input, err := prompter.Input("Stack name", []string{cfg.Stack.Name})
		if err != nil {
			return config.ProjectConfig{}, err
		}
		if input = strings.TrimSpace(input); input != "" {
			cfg.Stack.Name = input
		}
	}

	switch name := strings.TrimSpace(flags.Schedule); {
	case name != "":
		schedule, err := rollout.Lookup(name)
		if err != nil {
			return config.ProjectConfig{}, err
		}
		cfg.Rollout.Schedule = schedule.Name
	case interactive:
		options := make([]interaction.SelectOption, 0, len(rollout.All()))
		for _, schedule := range rollout.All() {
			options = append(options, interaction.SelectOption{
				Label: fmt.Sprintf("%s: %s", schedule.Name, schedule.Describe()),
				Value: schedule.Name,
			})
		}
		selected, err := prompter.SelectValue("Rollout schedule", options)
		if err != nil {
			return config.ProjectConfig{}, err
		}
		if selected != "" {
			cfg.Rollout.Schedule = selected
		}
	}

	cfg.Publish.Bucket = strings.TrimSpace(flags.Bucket)
	return cfg, nil
}

// scaffoldHandler writes a sample handler when the code directory is
// missing. Existing code is never touched.
func scaffoldHandler(root string, cfg config.ProjectConfig) (string, bool, error) {
	codeDir := filepath.Join(root, cfg.Function.Code)
	module, _, _ := strings.Cut(cfg.Function.Handler, ".")
	handlerPath := filepath.Join(codeDir, module+".py")
	if fileops.DirExists(codeDir) {
		return handlerPath, false, nil
	}
	if err := fileops.WriteFile(handlerPath, []byte(sampleHandler)); err != nil {
		return "", false, fmt.Errorf("write sample handler: %w", err)
	}
	return handlerPath, true, nil
}
