// Package linereader reads lines of TAUL source text from CLI input for the
// interactive taulc REPL. Adapted from internal/input's direct/readline
// reader pair, generalized from reading whole commands to reading raw
// source lines (taulc does not parse its own input into commands; every
// line is handed straight to the lexer/parser).
package linereader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Reader reads one line of source input at a time.
type Reader interface {
	ReadLine() (string, error)
	Close() error
}

// DirectReader reads lines from any generic input stream directly. It does
// not sanitize control or escape sequences.
type DirectReader struct {
	r *bufio.Reader
}

// InteractiveReader reads lines from stdin using a Go implementation of GNU
// Readline, giving history and in-line editing. Should generally only be
// used when directly connected to a TTY.
type InteractiveReader struct {
	rl *readline.Instance
}

// NewDirectReader returns a Reader wrapping r directly.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{r: bufio.NewReader(r)}
}

// NewInteractiveReader returns a Reader backed by readline with the given
// prompt.
func NewInteractiveReader(prompt string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &InteractiveReader{rl: rl}, nil
}

func (dr *DirectReader) Close() error { return nil }
func (ir *InteractiveReader) Close() error { return ir.rl.Close() }

// ReadLine reads the next line, blank or not, without its line ending. At
// end of input it returns an empty string and io.EOF.
func (dr *DirectReader) ReadLine() (string, error) {
	line, err := dr.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadLine reads the next line via readline. At end of input it returns an
// empty string and io.EOF.
func (ir *InteractiveReader) ReadLine() (string, error) {
	line, err := ir.rl.Readline()
	if err != nil {
		return "", err
	}
	return line, nil
}

// SetPrompt updates the interactive reader's prompt.
func (ir *InteractiveReader) SetPrompt(p string) { ir.rl.SetPrompt(p) }
