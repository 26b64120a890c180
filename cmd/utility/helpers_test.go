package main

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/utility/internal/config"
)

// observeLogs replaces the global logger for the duration of the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

// withConfig sets the app configuration for the duration of the test.
func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prev := app.cfg
	app.cfg = cfg
	t.Cleanup(func() { app.cfg = prev })
}
