// Where: internal/command/output.go
// What: Output helpers for command adapters.
// Why: Centralize UserInterface construction and emoji resolution.
package command

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/poruru-code/canary-topology/internal/constants"
	"github.com/poruru-code/canary-topology/internal/infra/interaction"
	"github.com/poruru-code/canary-topology/internal/infra/ui"
)

var errEmojiFlagConflict = errors.New("--emoji and --no-emoji cannot be used together")

func plainUI(out io.Writer) ui.UserInterface {
	return ui.NewPlainUI(out)
}

func commandUI(out io.Writer, cli CLI) (ui.UserInterface, error) {
	enabled, err := resolveEmojiEnabled(out, cli)
	if err != nil {
		return nil, err
	}
	return ui.NewUI(out, enabled), nil
}

func resolveEmojiEnabled(out io.Writer, cli CLI) (bool, error) {
	if cli.Emoji && cli.NoEmoji {
		return false, errEmojiFlagConflict
	}
	if cli.Emoji {
		return true, nil
	}
	if cli.NoEmoji {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(constants.EnvEmoji))) {
	case "1", "true", "on":
		return true, nil
	case "0", "false", "off":
		return false, nil
	}
	if strings.TrimSpace(os.Getenv("NO_EMOJI")) != "" {
		return false, nil
	}
	if strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) == "dumb" {
		return false, nil
	}
	if file, ok := out.(*os.File); ok {
		return interaction.IsTerminal(file), nil
	}
	return false, nil
}
