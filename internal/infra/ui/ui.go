// Where: internal/infra/ui/ui.go
// What: UserInterface used by usecases and commands.
// Why: Keep usecases independent of how output is rendered.
package ui

import (
	"fmt"
	"io"
)

// KeyValue is a key/value pair rendered inside a block.
type KeyValue struct {
	Key   string
	Value any
}

// UserInterface exposes high-level output helpers used by usecases.
type UserInterface interface {
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Block(emoji, title string, rows []KeyValue)
}

// NewUI returns a UserInterface writing to out. Warnings and successes get
// an emoji prefix when emojiEnabled, a bracketed tag otherwise.
func NewUI(out io.Writer, emojiEnabled bool) UserInterface {
	return consoleUI{out: out, console: New(out, emojiEnabled)}
}

// NewPlainUI returns a UserInterface that prints messages verbatim.
func NewPlainUI(out io.Writer) UserInterface {
	return plainUI{out: out, console: New(out, false)}
}

type consoleUI struct {
	out     io.Writer
	console *Console
}

func (c consoleUI) Info(msg string) {
	fmt.Fprintln(c.out, msg)
}

func (c consoleUI) Warn(msg string) {
	c.console.Warn(msg)
}

func (c consoleUI) Success(msg string) {
	c.console.Success(msg)
}

func (c consoleUI) Block(emoji, title string, rows []KeyValue) {
	c.console.Block(emoji, title, rows)
}

type plainUI struct {
	out     io.Writer
	console *Console
}

func (p plainUI) Info(msg string) {
	fmt.Fprintln(p.out, msg)
}

func (p plainUI) Warn(msg string) {
	fmt.Fprintln(p.out, msg)
}

func (p plainUI) Success(msg string) {
	fmt.Fprintln(p.out, msg)
}

func (p plainUI) Block(emoji, title string, rows []KeyValue) {
	p.console.Block(emoji, title, rows)
}
