// Where: internal/wire/wire.go
// What: CLI dependency wiring.
// Why: Centralize CLI dependency construction for reuse by main and tests.
package wire

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/poruru-code/canary-topology/internal/command"
	"github.com/poruru-code/canary-topology/internal/constants"
	"github.com/poruru-code/canary-topology/internal/infra/config"
	"github.com/poruru-code/canary-topology/internal/infra/interaction"
	publishinfra "github.com/poruru-code/canary-topology/internal/infra/publish"
	"github.com/poruru-code/canary-topology/internal/infra/ui"
	"github.com/poruru-code/canary-topology/internal/usecase/publish"
	"github.com/poruru-code/canary-topology/internal/usecase/synth"
)

// Local stacks accept any credentials; the SDK still requires a pair.
const (
	localAccessKey = "test"
	localSecretKey = "test"
)

var (
	// Getwd returns the current working directory. Tests may override this helper.
	Getwd = os.Getwd
	// Getenv reads credentials and endpoints. Tests may override this helper.
	Getenv = os.Getenv
	// NewClientFactory builds the AWS clients. Tests may override this helper.
	NewClientFactory = publishinfra.NewClientFactory
	// Stdout is the writer used for CLI output (used by command.Dependencies).
	Stdout = os.Stdout
	// Stderr receives kong usage errors.
	Stderr = os.Stderr
)

// BuildDependencies constructs CLI dependencies.
func BuildDependencies() command.Dependencies {
	return command.Dependencies{
		Out:             Stdout,
		ErrOut:          Stderr,
		Prompter:        interaction.HuhPrompter{},
		IsInteractive:   interaction.IsInteractive,
		Getwd:           Getwd,
		ProjectResolver: config.ResolveProjectRoot,
		Clock:           time.Now,
		Synth: command.SynthDeps{
			NewWorkflow: func(userInterface ui.UserInterface) command.SynthRunner {
				return synth.NewWorkflow(userInterface)
			},
		},
		Publish: command.PublishDeps{
			NewPublisher: newPublisher,
		},
	}
}

func newPublisher(ctx context.Context, cfg config.PublishConfig) (publish.Publisher, error) {
	factory := NewClientFactory(awsSettings(cfg))
	return publishinfra.NewPublisher(ctx, factory, cfg.Bucket, cfg.Table)
}

func awsSettings(cfg config.PublishConfig) publishinfra.AWSSettings {
	settings := publishinfra.AWSSettings{
		Region:    strings.TrimSpace(cfg.Region),
		Endpoint:  strings.TrimSpace(cfg.Endpoint),
		AccessKey: strings.TrimSpace(Getenv(constants.EnvAWSAccessKeyID)),
		SecretKey: strings.TrimSpace(Getenv(constants.EnvAWSSecretAccessKey)),
	}
	if settings.Endpoint != "" && (settings.AccessKey == "" || settings.SecretKey == "") {
		settings.AccessKey = localAccessKey
		settings.SecretKey = localSecretKey
	}
	return settings
}
