// Where: internal/command/schedules.go
// What: schedules and version commands.
// Why: List the predefined rollout schedules and build info.
package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/poruru-code/canary-topology/internal/domain/rollout"
	"github.com/poruru-code/canary-topology/internal/infra/ui"
	"github.com/poruru-code/canary-topology/internal/version"
)

func runSchedules(cli CLI, _ Dependencies, out io.Writer) int {
	userInterface, err := commandUI(out, cli)
	if err != nil {
		return exitWithError(out, err)
	}
	rows := []ui.KeyValue{}
	for _, schedule := range rollout.All() {
		name := schedule.Name
		if schedule.Name == rollout.Default.Name {
			name += " (default)"
		}
		rows = append(rows, ui.KeyValue{Key: name, Value: formatSteps(schedule)})
	}
	userInterface.Block("🚦", "Rollout schedules", rows)
	return 0
}

func formatSteps(schedule rollout.Schedule) string {
	parts := []string{}
	for _, step := range schedule.Steps() {
		parts = append(parts, fmt.Sprintf("%d%%@%s", step.Percent, step.After))
	}
	return fmt.Sprintf("%s [%s]", schedule.Describe(), strings.Join(parts, " "))
}

// runVersion prints the version information of the CLI.
func runVersion(_ CLI, _ Dependencies, out io.Writer) int {
	plainUI(out).Info(version.Banner())
	return 0
}
