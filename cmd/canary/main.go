// Where: cmd/canary/main.go
// What: CLI entrypoint.
// Why: Execute canary commands with configured dependencies.
package main

import (
	"os"

	"github.com/poruru-code/canary-topology/internal/command"
	"github.com/poruru-code/canary-topology/internal/wire"
)

func main() {
	os.Exit(command.Run(os.Args[1:], wire.BuildDependencies()))
}
