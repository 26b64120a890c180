package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/utility/pkg/repl"
	"github.com/fyrsmithlabs/utility/pkg/tracing"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run the commands interactively",
	Long: `Start an interactive shell. Each line is one command, quoted like in a
POSIX shell:

  > send "backup finished"
  > meter --interval 100ms /var/log/syslog
  > exit

Type exit or quit, or end the input, to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runShell(cmd, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// errShellStdin is returned to commands that try to read stdin inside the
// shell, where every input line is a command.
var errShellStdin = errors.New("stdin is reserved for shell commands; name a file")

type shellStdin struct{}

func (shellStdin) Read([]byte) (int, error) { return 0, errShellStdin }

// newShellRoot builds the command tree the shell dispatches on.
func newShellRoot(out io.Writer) func() *cobra.Command {
	return func() *cobra.Command {
		root := &cobra.Command{Use: "utility"}
		root.SetIn(shellStdin{})
		root.SetOut(out)
		root.SetErr(out)

		root.AddCommand(
			newSendCmd(),
			newMeterCmd(),
			&cobra.Command{
				Use:     "exit",
				Aliases: []string{"quit"},
				Short:   "Leave the shell",
			},
		)
		return root
	}
}

func runShell(cmd *cobra.Command, in io.Reader, out io.Writer) error {
	ctx := cmdContext(cmd)
	logger := zap.L().Named("shell")

	evaluate := func(inv repl.Invocation) repl.ControlFlow {
		if inv.Name() == "exit" {
			return repl.Exit
		}

		lineCtx, span := tracing.Start(ctx, "shell "+inv.Name())
		defer span.End()

		inv.Command().SetContext(lineCtx)
		if err := inv.Run(); err != nil {
			logger.Debug("shell command failed", append(tracing.ContextFields(lineCtx),
				zap.String("command", inv.Name()), zap.Error(err))...)
			fmt.Fprintf(out, "error: %v\n", err)
		}

		if ctx.Err() != nil {
			return repl.Exit
		}
		return repl.Continue
	}

	return repl.Run(repl.Commands(newShellRoot(out)), evaluate,
		repl.WithInput(in),
		repl.WithOutput(out),
		repl.WithPrompt("utility> "),
	)
}
