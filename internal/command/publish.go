// Where: internal/command/publish.go
// What: publish command adapter.
// Why: Map CLI flags onto the publish usecase.
package command

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/poruru-code/canary-topology/internal/infra/interaction"
	"github.com/poruru-code/canary-topology/internal/usecase/publish"
)

var errPublisherMissing = errors.New("publish is not available: no publisher configured")

func runPublish(cli CLI, deps Dependencies, out io.Writer) int {
	userInterface, err := commandUI(out, cli)
	if err != nil {
		return exitWithError(out, err)
	}
	if deps.Publish.NewPublisher == nil {
		return exitWithError(out, errPublisherMissing)
	}
	proj, err := loadProject(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	if bucket := strings.TrimSpace(cli.Publish.Bucket); bucket != "" {
		proj.config.Publish.Bucket = bucket
	}
	if table := strings.TrimSpace(cli.Publish.Table); table != "" {
		proj.config.Publish.Table = table
	}

	runner := deps.synthRunner(userInterface)
	workflow := publish.Workflow{
		Synth:         runner.Run,
		NewPublisher:  deps.Publish.NewPublisher,
		Prompter:      deps.Prompter,
		UserInterface: userInterface,
	}
	req := publish.Request{
		Synth:       proj.synthRequest(cli.Publish.Output, cli.Publish.Format, deps.Clock),
		Yes:         cli.Publish.Yes,
		Interactive: deps.interactive(),
	}
	if _, err := workflow.Run(context.Background(), req); err != nil {
		if errors.Is(err, publish.ErrCancelled) {
			userInterface.Warn("Publish cancelled")
			return 1
		}
		return exitWithError(out, err)
	}
	return 0
}

func (d Dependencies) interactive() bool {
	if d.IsInteractive != nil {
		return d.IsInteractive()
	}
	return interaction.IsInteractive()
}
