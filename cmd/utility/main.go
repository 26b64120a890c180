// Package main implements the utility CLI: Telegram messages, read
// throughput metering and an interactive shell, all traced through
// pkg/tracing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/utility/internal/config"
	"github.com/fyrsmithlabs/utility/pkg/tracing"
)

var (
	// version information
	version = "dev"

	// configPath is the YAML config file (default ~/.config/utility/config.yaml)
	configPath string
	// logFile overrides tracing.file
	logFile string
	// logLevel overrides tracing.level
	logLevel string
	// logStdout overrides tracing.stdout
	logStdout bool
	// profilerOn overrides tracing.profiler.enabled
	profilerOn bool
)

// app is the state shared by every command once the root has run.
var app struct {
	cfg   *config.Config
	guard *tracing.Defer
}

func main() {
	defer tracing.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

var rootCmd = &cobra.Command{
	Use:   "utility",
	Short: "Small tools with tracing built in",
	Long: `utility bundles a few small tools that share one tracing setup.

Logging goes to stdout, a log file and an OTLP profiler as configured in
~/.config/utility/config.yaml, UTILITY_* environment variables or flags.

Examples:
  # Send a message to the configured Telegram chat
  utility send "build finished"

  # Measure how fast a file can be read, with debug logs in a file
  utility meter --log-file meter.log --log-level debug big.iso

  # Interactive shell
  utility shell`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/utility/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write multi-line logs to this file (truncated)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&logStdout, "stdout", true, "write single-line logs to stdout")
	rootCmd.PersistentFlags().BoolVar(&profilerOn, "profiler", false, "forward spans and logs to the OTLP profiler")

	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newMeterCmd())
	rootCmd.AddCommand(shellCmd)
}

// setup loads the configuration and installs tracing. The guard is closed
// by atexit so profiler data is flushed on every exit path.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg.Tracing)

	t, err := tracing.FromConfig(&cfg.Tracing)
	if err != nil {
		return err
	}

	guard, err := t.Init()
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	atexit.Register(func() {
		if err := guard.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush profiler: %v\n", err)
		}
	})

	app.cfg = cfg
	app.guard = guard

	zap.L().Debug("tracing initialized",
		zap.String("command", cmd.Name()),
		zap.Bool("profiler", guard.Active()),
		zap.String("log_level", cfg.Tracing.Level),
		zap.String("telegram_chat_id", cfg.Telegram.ChatID),
		tracing.Secret("telegram_token", cfg.Telegram.Token))
	return nil
}

// applyFlags overrides cfg with the tracing flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *tracing.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.File = logFile
	}
	if flags.Changed("log-level") {
		cfg.Level = logLevel
	}
	if flags.Changed("stdout") {
		cfg.Stdout = logStdout
	}
	if flags.Changed("profiler") {
		cfg.Profiler.Enabled = profilerOn
	}
}
