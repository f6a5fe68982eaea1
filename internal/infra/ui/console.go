// Where: internal/infra/ui/console.go
// What: Console line and block rendering.
// Why: Give every command the same prefixes and block layout.
package ui

import (
	"fmt"
	"io"
)

// Console writes prefixed lines and key/value blocks to Out.
type Console struct {
	Out          io.Writer
	EmojiEnabled bool
}

// New creates a Console. Without emoji, status lines fall back to
// bracketed tags.
func New(out io.Writer, emojiEnabled bool) *Console {
	return &Console{Out: out, EmojiEnabled: emojiEnabled}
}

// Block prints a titled block of rows padded by blank lines.
// Example:
//
//	🧬 Synthesized
//	   Version label:         v20261019T090000Z
func (c *Console) Block(emoji, title string, rows []KeyValue) {
	fmt.Fprintln(c.Out)
	fmt.Fprintf(c.Out, "%s%s\n", c.prefix(emoji, ""), title)
	for _, row := range rows {
		fmt.Fprintf(c.Out, "   %-22s %v\n", row.Key+":", row.Value)
	}
	fmt.Fprintln(c.Out)
}

func (c *Console) Success(msg string) {
	fmt.Fprintf(c.Out, "%s%s\n", c.prefix("✅", "[ok]"), msg)
}

func (c *Console) Warn(msg string) {
	fmt.Fprintf(c.Out, "%s%s\n", c.prefix("⚠️", "[warn]"), msg)
}

// Error prints msg after a cross regardless of the emoji setting.
func (c *Console) Error(msg string) {
	fmt.Fprintf(c.Out, "✗ %s\n", msg)
}

func (c *Console) prefix(emoji, fallback string) string {
	if c.EmojiEnabled && emoji != "" {
		return emoji + " "
	}
	if fallback != "" {
		return fallback + " "
	}
	return ""
}
