// Package repl runs a read-evaluate-print loop over line-oriented input.
//
// Each line is split into words with shell quoting rules, parsed into a
// command and handed to an evaluate function, which decides whether the
// loop goes on:
//
//	root := func() *cobra.Command {
//	    cmd := &cobra.Command{Use: "shell"}
//	    cmd.AddCommand(addCmd(), &cobra.Command{Use: "exit", Aliases: []string{"quit"}})
//	    return cmd
//	}
//
//	err := repl.Run(repl.Commands(root), func(inv repl.Invocation) repl.ControlFlow {
//	    if inv.Name() == "exit" {
//	        return repl.Exit
//	    }
//	    if err := inv.Run(); err != nil {
//	        fmt.Println(err)
//	    }
//	    return repl.Continue
//	})
//
// Run, the parser and the evaluate function all execute on the calling
// goroutine.
package repl
