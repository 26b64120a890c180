package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
)

// DefaultPrompt is printed before every line is read.
const DefaultPrompt = "> "

// ControlFlow tells Run whether to read another line.
type ControlFlow int

const (
	// Continue reads the next line.
	Continue ControlFlow = iota
	// Exit ends the loop.
	Exit
)

// String implements fmt.Stringer.
func (c ControlFlow) String() string {
	switch c {
	case Continue:
		return "continue"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("ControlFlow(%d)", int(c))
	}
}

// Parser turns the words of one line into a command. The first word is the
// command name. A returned error is printed and the line is skipped.
type Parser[P any] func(words []string) (P, error)

type options struct {
	in     io.Reader
	out    io.Writer
	prompt string
}

// Option configures Run.
type Option func(*options)

// WithInput reads lines from r instead of standard input.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.in = r }
}

// WithOutput writes prompts and diagnostics to w instead of standard output.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithPrompt replaces DefaultPrompt.
func WithPrompt(prompt string) Option {
	return func(o *options) { o.prompt = prompt }
}

// Run loops until evaluate returns Exit or the input ends.
//
// Every iteration prints the prompt and reads one line. Lines with
// unbalanced quotes print "error: malformed input", blank lines are
// skipped, and parse errors are printed; none of them end the loop. End of
// input returns nil. Any other read error is returned.
func Run[P any](parse Parser[P], evaluate func(P) ControlFlow, opts ...Option) error {
	o := options{
		in:     os.Stdin,
		out:    os.Stdout,
		prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(&o)
	}

	reader := bufio.NewReader(o.in)

	for {
		if _, err := io.WriteString(o.out, o.prompt); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed to read line: %w", readErr)
		}
		atEOF := readErr != nil

		if atEOF && line == "" {
			return nil
		}

		if step(o.out, line, parse, evaluate) == Exit || atEOF {
			return nil
		}
	}
}

// step handles a single line.
func step[P any](out io.Writer, line string, parse Parser[P], evaluate func(P) ControlFlow) ControlFlow {
	words, err := shlex.Split(strings.TrimSpace(line))
	if err != nil {
		fmt.Fprintln(out, "error: malformed input")
		return Continue
	}

	if len(words) == 0 {
		return Continue
	}

	cmd, err := parse(words)
	if err != nil {
		fmt.Fprintln(out, err)
		return Continue
	}

	return evaluate(cmd)
}
