// internal/logger/pretty.go
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// PrettyEncoder creates a user-friendly console encoder
func PrettyEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    prettyLevelEncoder,
		EncodeTime:     prettyTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
}

func prettyLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(ColorCyan + "[DEBUG]" + ColorReset)
	case zapcore.InfoLevel:
		enc.AppendString(ColorGreen + "[INFO]" + ColorReset)
	case zapcore.WarnLevel:
		enc.AppendString(ColorYellow + "[WARN]" + ColorReset)
	case zapcore.ErrorLevel:
		enc.AppendString(ColorRed + "[ERROR]" + ColorReset)
	case zapcore.FatalLevel:
		enc.AppendString(ColorRed + ColorBold + "[FATAL]" + ColorReset)
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

func prettyTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// FormatMessage переписывает известные сообщения в короткий вид.
func FormatMessage(msg string, fields []zapcore.Field) string {
	switch {
	case strings.HasPrefix(msg, "Transaction sent"):
		return fmt.Sprintf("%s📤 Transaction sent: %s (attempt %s)%s",
			ColorYellow, shortenSignature(fieldString(fields, "signature")), fieldString(fields, "attempt"), ColorReset)

	case strings.HasPrefix(msg, "Transaction confirmed"):
		return fmt.Sprintf("%s✅ Transaction %s: %s%s",
			ColorGreen, fieldString(fields, "status"), shortenSignature(fieldString(fields, "signature")), ColorReset)

	case strings.HasPrefix(msg, "Attempt failed"):
		return fmt.Sprintf("%s🔁 Attempt %s/%s failed: %s%s",
			ColorYellow, fieldString(fields, "attempt"), fieldString(fields, "max_attempts"), fieldString(fields, "error"), ColorReset)

	case strings.HasPrefix(msg, "Transaction aborted"):
		return fmt.Sprintf("%s✗ Transaction aborted: %s%s", ColorRed, fieldString(fields, "error"), ColorReset)

	case strings.HasPrefix(msg, "NFTs loaded"):
		return fmt.Sprintf("%s🖼  Loaded %s NFTs for %s%s",
			ColorBlue, fieldString(fields, "loaded"), fieldString(fields, "owner"), ColorReset)

	case strings.HasPrefix(msg, "Listening to API"):
		return fmt.Sprintf("%s🚀 API listening on %s%s", ColorPurple, fieldString(fields, "addr"), ColorReset)

	default:
		return msg
	}
}

func fieldString(fields []zapcore.Field, key string) string {
	for _, f := range fields {
		if f.Key != key {
			continue
		}
		switch f.Type {
		case zapcore.StringType:
			return f.String
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Uint64Type, zapcore.Uint32Type:
			return fmt.Sprintf("%d", f.Integer)
		case zapcore.ErrorType:
			if err, ok := f.Interface.(error); ok {
				return err.Error()
			}
		}
		if f.Interface != nil {
			return fmt.Sprintf("%v", f.Interface)
		}
		return f.String
	}
	return ""
}

func shortenSignature(sig string) string {
	if len(sig) > 16 {
		return sig[:8] + "..." + sig[len(sig)-8:]
	}
	return sig
}

// prettyCore печатает только форматированное сообщение без полей.
type prettyCore struct {
	core   zapcore.Core
	fields []zapcore.Field
}

func (c *prettyCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *prettyCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &prettyCore{core: c.core, fields: merged}
}

func (c *prettyCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *prettyCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	entry.Message = FormatMessage(entry.Message, all)
	return c.core.Write(entry, nil)
}

func (c *prettyCore) Sync() error {
	return c.core.Sync()
}
