// Package config provides configuration loading for the utility command.
package config

import (
	"fmt"

	pkgconfig "github.com/fyrsmithlabs/utility/pkg/config"
	"github.com/fyrsmithlabs/utility/pkg/telegram"
	"github.com/fyrsmithlabs/utility/pkg/tracing"
)

// Config holds the complete utility configuration.
type Config struct {
	Tracing  tracing.Config `koanf:"tracing"`
	Telegram TelegramConfig `koanf:"telegram"`
}

// TelegramConfig holds the Bot API credentials used by the send command.
type TelegramConfig struct {
	Token   pkgconfig.Secret   `koanf:"token"`
	ChatID  string             `koanf:"chat_id"`
	Timeout pkgconfig.Duration `koanf:"timeout"` // HTTP request timeout (default: 10s)
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	return &Config{
		Tracing: *tracing.NewDefaultConfig(),
		Telegram: TelegramConfig{
			Timeout: pkgconfig.Duration(telegram.HTTPTimeout),
		},
	}
}

// Validate validates the configuration.
//
// Telegram credentials are optional here; commands that send messages
// check them with RequireTelegram.
func (c *Config) Validate() error {
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	if c.Telegram.Timeout.Duration() <= 0 {
		return fmt.Errorf("telegram: timeout must be positive")
	}

	return nil
}

// RequireTelegram reports an error naming the first missing credential.
func (c *Config) RequireTelegram() error {
	if !c.Telegram.Token.IsSet() {
		return fmt.Errorf("telegram.token is not set (UTILITY_TELEGRAM_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is not set (UTILITY_TELEGRAM_CHAT_ID)")
	}
	return nil
}
