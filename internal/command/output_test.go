package command

import (
	"bytes"
	"os"
	"testing"

	"github.com/poruru-code/canary-topology/internal/constants"
	"github.com/poruru-code/canary-topology/internal/infra/interaction"
)

func TestResolveEmojiEnabled(t *testing.T) {
	tests := []struct {
		name string
		cli  CLI
		env  map[string]string
		want bool
	}{
		{name: "flag on", cli: CLI{Emoji: true}, want: true},
		{name: "flag off", cli: CLI{NoEmoji: true}, env: map[string]string{constants.EnvEmoji: "1"}, want: false},
		{name: "env on", env: map[string]string{constants.EnvEmoji: "true"}, want: true},
		{name: "env off", env: map[string]string{constants.EnvEmoji: "off"}, want: false},
		{name: "no emoji", env: map[string]string{"NO_EMOJI": "1"}, want: false},
		{name: "buffer", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			got, err := resolveEmojiEnabled(&bytes.Buffer{}, tt.cli)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveEmojiEnabledUsesTerminal(t *testing.T) {
	clearEnv(t)
	t.Setenv("TERM", "xterm")
	prev := interaction.IsTerminal
	interaction.IsTerminal = func(*os.File) bool { return true }
	t.Cleanup(func() { interaction.IsTerminal = prev })

	got, err := resolveEmojiEnabled(os.Stdout, CLI{})
	if err != nil || !got {
		t.Fatalf("expected emoji on terminal, got %v (%v)", got, err)
	}

	t.Setenv("TERM", "dumb")
	got, _ = resolveEmojiEnabled(os.Stdout, CLI{})
	if got {
		t.Fatalf("expected no emoji on dumb terminal")
	}
}
