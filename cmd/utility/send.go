package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/utility/internal/config"
	"github.com/fyrsmithlabs/utility/pkg/telegram"
	"github.com/fyrsmithlabs/utility/pkg/tracing"
)

// newSendCmd builds the send command. It is a constructor so the shell can
// build a fresh copy for every line.
func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>...",
		Short: "Send a message to the configured Telegram chat",
		Long: `Send a message to the Telegram chat configured under telegram.chat_id,
as the bot identified by telegram.token. All arguments are joined with spaces.

Examples:
  utility send "deploy finished"
  UTILITY_TELEGRAM_CHAT_ID=-100123 utility send backup done`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := newTelegram(app.cfg)
			if err != nil {
				return err
			}
			if err := send(cmdContext(cmd), tg, strings.Join(args, " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}
}

// newTelegram creates the client described by cfg.
func newTelegram(cfg *config.Config, opts ...telegram.Option) (*telegram.Telegram, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}

	opts = append([]telegram.Option{
		telegram.WithHTTPClient(&http.Client{Timeout: cfg.Telegram.Timeout.Duration()}),
		telegram.WithLogger(zap.L().Named("telegram")),
	}, opts...)

	return telegram.New(cfg.Telegram.Token.Value(), cfg.Telegram.ChatID, opts...)
}

// send posts text inside a span.
func send(ctx context.Context, tg *telegram.Telegram, text string) error {
	ctx, span := tracing.Start(ctx, "send",
		trace.WithAttributes(attribute.Int("message.length", len(text))))
	defer span.End()

	zap.L().Info("sending telegram message", append(tracing.ContextFields(ctx), zap.Int("length", len(text)))...)

	if err := tg.SendMessage(ctx, text); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		zap.L().Error("telegram message failed", append(tracing.ContextFields(ctx), zap.Error(err))...)
		return err
	}
	return nil
}

// cmdContext is the command's context, falling back to its parents and
// then to context.Background.
func cmdContext(cmd *cobra.Command) context.Context {
	for c := cmd; c != nil; c = c.Parent() {
		if ctx := c.Context(); ctx != nil {
			return ctx
		}
	}
	return context.Background()
}
