package repl

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Invocation is a command line resolved against a cobra command tree.
type Invocation struct {
	cmd  *cobra.Command
	args []string
}

// Name is the resolved command's name, never an alias.
func (i Invocation) Name() string {
	return i.cmd.Name()
}

// Command is the resolved command, with its flags parsed.
func (i Invocation) Command() *cobra.Command {
	return i.cmd
}

// Args are the positional arguments left after flag parsing.
func (i Invocation) Args() []string {
	return i.args
}

// Run executes the command's RunE, or Run if RunE is unset.
func (i Invocation) Run() error {
	switch {
	case i.cmd.RunE != nil:
		return i.cmd.RunE(i.cmd, i.args)
	case i.cmd.Run != nil:
		i.cmd.Run(i.cmd, i.args)
		return nil
	default:
		return fmt.Errorf("%s: command is not runnable", i.cmd.Name())
	}
}

// Commands parses lines with the subcommands of the tree built by newRoot.
// The first word of a line names a subcommand of the root, the way a
// multicall binary dispatches on its own name. newRoot is called for every
// line so flag values never leak between lines.
//
// Unknown commands, bad flags, a wrong number of arguments and --help all
// come back as errors, which Run prints.
func Commands(newRoot func() *cobra.Command) Parser[Invocation] {
	return func(words []string) (Invocation, error) {
		root := newRoot()
		root.SilenceErrors = true
		root.SilenceUsage = true

		cmd, rest, err := root.Find(words)
		if err != nil {
			return Invocation{}, err
		}
		if cmd == root {
			return Invocation{}, fmt.Errorf("error: missing command\n\n%s", root.UsageString())
		}

		cmd.InitDefaultHelpFlag()
		if err := cmd.ParseFlags(rest); err != nil {
			return Invocation{}, fmt.Errorf("error: %w\n\n%s", err, cmd.UsageString())
		}

		if help, _ := cmd.Flags().GetBool("help"); help {
			return Invocation{}, errors.New(cmd.UsageString())
		}

		args := cmd.Flags().Args()
		if err := cmd.ValidateArgs(args); err != nil {
			return Invocation{}, fmt.Errorf("error: %w\n\n%s", err, cmd.UsageString())
		}
		if err := cmd.ValidateRequiredFlags(); err != nil {
			return Invocation{}, fmt.Errorf("error: %w\n\n%s", err, cmd.UsageString())
		}

		return Invocation{cmd: cmd, args: args}, nil
	}
}
