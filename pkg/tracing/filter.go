package tracing

import (
	"go.uber.org/zap/zapcore"
)

// levelFilterCore drops every entry below min before any wrapped sink sees it.
type levelFilterCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	if lvl < c.min {
		return false
	}
	return c.Core.Enabled(lvl)
}

// Level reports the minimum level for zapcore.LevelOf.
func (c *levelFilterCore) Level() zapcore.Level {
	return c.min
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child core that preserves level filtering.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core: c.Core.With(fields),
		min:  c.min,
	}
}
