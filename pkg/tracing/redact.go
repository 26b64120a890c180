package tracing

import (
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/utility/pkg/config"
)

// secretMarshaler wraps config.Secret for zap object marshaling.
type secretMarshaler struct {
	val config.Secret
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s secretMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("set", s.val.IsSet())
	enc.AddString("value", Redacted(s.val.Value()))
	return nil
}

// Secret logs whether val is set and its length, never its value.
func Secret(key string, val config.Secret) zap.Field {
	return zap.Object(key, secretMarshaler{val: val})
}

// Redacted replaces s with "[REDACTED:<len>]".
func Redacted(s string) string {
	return "[REDACTED:" + strconv.Itoa(len(s)) + "]"
}
