// Where: internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/poruru-code/canary-topology/internal/infra/config"
	"github.com/poruru-code/canary-topology/internal/infra/interaction"
	"github.com/poruru-code/canary-topology/internal/infra/ui"
	"github.com/poruru-code/canary-topology/internal/meta"
	"github.com/poruru-code/canary-topology/internal/usecase/publish"
	"github.com/poruru-code/canary-topology/internal/usecase/synth"
)

// Dependencies holds all injected dependencies required for CLI command execution.
// Zero values fall back to local defaults so tests only set what they exercise.
type Dependencies struct {
	Out             io.Writer
	ErrOut          io.Writer
	Prompter        interaction.Prompter
	IsInteractive   func() bool
	Getwd           func() (string, error)
	ProjectResolver func(string) (string, error)
	Clock           func() time.Time
	Synth           SynthDeps
	Publish         PublishDeps
}

type (
	SynthDeps struct {
		NewWorkflow func(ui.UserInterface) SynthRunner
	}

	PublishDeps struct {
		NewPublisher func(ctx context.Context, cfg config.PublishConfig) (publish.Publisher, error)
	}

	// SynthRunner runs one synth.
	SynthRunner interface {
		Run(req synth.Request) (synth.Result, error)
	}
)

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Config    string       `short:"f" name:"config" help:"Path to canary.yaml (default: search upward from cwd)"`
	EnvFile   string       `name:"env-file" help:"Path to .env file"`
	Context   []string     `short:"c" name:"context" sep:"none" help:"Context value key=value (repeatable)"`
	Emoji     bool         `name:"emoji" help:"Enable emoji output (default: auto)"`
	NoEmoji   bool         `name:"no-emoji" help:"Disable emoji output"`
	Init      InitCmd      `cmd:"" help:"Create canary.yaml in the current directory"`
	Synth     SynthCmd     `cmd:"" help:"Synthesize the deployment template"`
	Graph     GraphCmd     `cmd:"" help:"Show the topology dependency graph"`
	Publish   PublishCmd   `cmd:"" help:"Synthesize and upload the build"`
	Schedules SchedulesCmd `cmd:"" help:"List rollout schedules"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

type (
	InitCmd struct {
		Name     string `help:"Stack name"`
		Schedule string `help:"Rollout schedule"`
		Bucket   string `help:"Asset bucket for publish"`
		Force    bool   `help:"Overwrite an existing canary.yaml"`
	}

	SynthCmd struct {
		Output string `short:"o" help:"Output directory (default: stack.output_dir)"`
		Format string `help:"Template format (json/yaml)"`
	}

	GraphCmd struct {
		Dot bool `help:"Render Graphviz DOT"`
	}

	PublishCmd struct {
		Output string `short:"o" help:"Output directory (default: stack.output_dir)"`
		Format string `help:"Template format (json/yaml)"`
		Bucket string `help:"Asset bucket (overrides publish.bucket)"`
		Table  string `help:"Build ledger table (overrides publish.table)"`
		Yes    bool   `short:"y" help:"Skip the confirmation prompt"`
	}

	SchedulesCmd struct{}

	VersionCmd struct{}
)

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	if deps.ErrOut == nil {
		deps.ErrOut = os.Stderr
	}

	if len(args) == 0 {
		return runNoArgs(out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name(meta.AppName),
		kong.Description("Declare, synthesize and publish a canary-deployed serverless API."),
		kong.Writers(out, deps.ErrOut),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return handleParseError(err, out)
	}

	if _, err := config.LoadEnvFile(cli.EnvFile); err != nil {
		plainUI(out).Warn(fmt.Sprintf("Warning: %v", err))
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	plainUI(out).Warn("unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	handlers := map[string]commandHandler{
		"init":      runInit,
		"synth":     runSynth,
		"graph":     runGraph,
		"publish":   runPublish,
		"schedules": runSchedules,
		"version":   runVersion,
	}
	if handler, ok := handlers[command]; ok {
		return handler(cli, deps, out), true
	}
	return 1, false
}

// runNoArgs prints a short usage when the CLI is invoked without arguments.
func runNoArgs(out io.Writer) int {
	userInterface := plainUI(out)
	userInterface.Info("Usage:")
	userInterface.Info(fmt.Sprintf("  %s <init|synth|graph|publish|schedules|version> [flags]", meta.AppName))
	userInterface.Info("")
	userInterface.Info(fmt.Sprintf("Try: %s --help", meta.AppName))
	return 0
}

// handleParseError provides user-friendly error messages for parse failures.
func handleParseError(err error, out io.Writer) int {
	msg := err.Error()
	if isMissingValue(msg) {
		userInterface := plainUI(out)
		switch {
		case strings.Contains(msg, "--context"):
			userInterface.Warn("`-c/--context` expects key=value.")
			userInterface.Info(fmt.Sprintf("Example: %s synth -c owner=team-a -c env=prod", meta.AppName))
			return 1
		case strings.Contains(msg, "--config"):
			userInterface.Warn("`-f/--config` expects a path to canary.yaml.")
			return 1
		case strings.Contains(msg, "--env-file"):
			userInterface.Warn("`--env-file` expects a value. Provide a file path.")
			userInterface.Info(fmt.Sprintf("Example: %s synth --env-file .env.prod", meta.AppName))
			return 1
		}
	}
	return exitWithError(out, err)
}

// isMissingValue matches kong's "flag given without a value" errors.
func isMissingValue(msg string) bool {
	for _, marker := range []string{"missing value", "expected string value", "expected a value"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
