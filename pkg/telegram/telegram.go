// Package telegram sends messages to a Telegram chat through the Bot API.
//
//	tg, err := telegram.New(token, chatID)
//	if err != nil {
//	    return err
//	}
//	return tg.SendMessage(ctx, "Hello, World!")
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/utility/pkg/tracing"
)

const (
	// DefaultServerURL is the public Bot API endpoint.
	DefaultServerURL = "https://api.telegram.org"

	// HTTPTimeout bounds every request made by the default HTTP client.
	HTTPTimeout = 10 * time.Second

	// DefaultRateLimit keeps a single chat under the Bot API limit of about
	// one message per second.
	DefaultRateLimit = rate.Limit(1)
)

var (
	// ErrMissingToken is returned by New for an empty bot token.
	ErrMissingToken = errors.New("telegram: bot token is required")

	// ErrMissingChatID is returned by New for an empty chat ID.
	ErrMissingChatID = errors.New("telegram: chat ID is required")
)

// Telegram sends messages to a single chat. It is safe for concurrent use.
type Telegram struct {
	client  BotClient
	token   string
	chatID  string
	limiter *rate.Limiter
	logger  *zap.Logger
}

type options struct {
	httpClient *http.Client
	serverURL  string
	limit      rate.Limit
	burst      int
	logger     *zap.Logger
}

// Option configures New.
type Option func(*options)

// WithHTTPClient replaces the default client, which times out after
// HTTPTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithServerURL points the client at another Bot API server. Only https
// URLs are accepted.
func WithServerURL(u string) Option {
	return func(o *options) { o.serverURL = u }
}

// WithRateLimit paces SendMessage to limit messages per second with the
// given burst. rate.Inf disables pacing. The default is DefaultRateLimit
// with a burst of 1.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.limit = limit
		o.burst = burst
	}
}

// WithLogger sets the logger. The default is zap.L() at the time New runs.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a client sending to chatID as the bot identified by token.
// No request is made until the first message is sent.
func New(token, chatID string, opts ...Option) (*Telegram, error) {
	o := options{
		serverURL: DefaultServerURL,
		limit:     DefaultRateLimit,
		burst:     1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if token == "" {
		return nil, ErrMissingToken
	}
	if chatID == "" {
		return nil, ErrMissingChatID
	}
	if err := validateServerURL(o.serverURL); err != nil {
		return nil, err
	}

	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: HTTPTimeout}
	}
	if o.logger == nil {
		o.logger = zap.L()
	}

	b, err := bot.New(token,
		bot.WithSkipGetMe(),
		bot.WithServerURL(o.serverURL),
		bot.WithHTTPClient(HTTPTimeout, o.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	tg := newWithClient(newRealBotClient(b), token, chatID, o.logger)
	tg.limiter = rate.NewLimiter(o.limit, o.burst)
	return tg, nil
}

func newWithClient(client BotClient, token, chatID string, logger *zap.Logger) *Telegram {
	return &Telegram{
		client:  client,
		token:   token,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  logger.With(zap.String("chat_id", chatID)),
	}
}

// SendMessage posts text to the chat. The text is sent as is, without a
// parse mode, so it may contain any characters. It waits for the rate
// limiter first and gives up when ctx ends.
func (t *Telegram) SendMessage(ctx context.Context, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	start := time.Now()

	msg, err := t.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   text,
	})
	if err != nil {
		// Transport errors quote the request URL, which contains the token.
		err = redactToken(err, t.token)
		t.logger.Warn("telegram message failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	fields := []zap.Field{zap.Int("length", len(text)), zap.Duration("duration", time.Since(start))}
	if msg != nil {
		fields = append(fields, zap.Int("message_id", msg.ID))
	}
	t.logger.Debug("telegram message sent", fields...)
	return nil
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid telegram server URL: %w", err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid telegram server URL %q: must be an https URL", raw)
	}
	return nil
}

// redactedError is err with the bot token removed from its message.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redactToken(err error, token string) error {
	msg := err.Error()
	if token == "" || !strings.Contains(msg, token) {
		return err
	}
	return &redactedError{
		msg: strings.ReplaceAll(msg, token, tracing.Redacted(token)),
		err: err,
	}
}
