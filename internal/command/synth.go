// Where: internal/command/synth.go
// What: synth and graph command adapters.
// Why: Map CLI flags onto the synth usecase.
package command

import (
	"fmt"
	"io"

	"github.com/poruru-code/canary-topology/internal/infra/ui"
	"github.com/poruru-code/canary-topology/internal/usecase/synth"
)

func runSynth(cli CLI, deps Dependencies, out io.Writer) int {
	userInterface, err := commandUI(out, cli)
	if err != nil {
		return exitWithError(out, err)
	}
	proj, err := loadProject(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	workflow := deps.synthRunner(userInterface)
	if _, err := workflow.Run(proj.synthRequest(cli.Synth.Output, cli.Synth.Format, deps.Clock)); err != nil {
		return exitWithError(out, err)
	}
	return 0
}

func runGraph(cli CLI, deps Dependencies, out io.Writer) int {
	proj, err := loadProject(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	view, err := synth.Describe(proj.synthRequest("", "", deps.Clock))
	if err != nil {
		return exitWithError(out, err)
	}
	if cli.Graph.Dot {
		_, _ = io.WriteString(out, view.DOT())
		return 0
	}

	userInterface, err := commandUI(out, cli)
	if err != nil {
		return exitWithError(out, err)
	}
	rows := make([]ui.KeyValue, 0, len(view.Nodes))
	for i, node := range view.Nodes {
		rows = append(rows, ui.KeyValue{Key: fmt.Sprintf("%d. %s", i+1, node.ID), Value: node.Kind})
	}
	userInterface.Block("🧬", fmt.Sprintf("Topology %s", view.Stack), rows)
	for _, edge := range view.Edges {
		userInterface.Info(fmt.Sprintf("%s -> %s", edge.From, edge.To))
	}
	return 0
}

func (d Dependencies) synthRunner(userInterface ui.UserInterface) SynthRunner {
	if d.Synth.NewWorkflow != nil {
		return d.Synth.NewWorkflow(userInterface)
	}
	return synth.NewWorkflow(userInterface)
}
