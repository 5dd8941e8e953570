// internal/logger/pretty.go
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
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

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
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
		enc.AppendString("[" + level.CapitalString() + "]")
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// CreatePrettyLogger creates a stdout logger with user-friendly output,
// used by the one-shot CLI.
func CreatePrettyLogger(debug bool) *zap.Logger {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(prettyEncoderConfig()),
		zapcore.Lock(os.Stdout),
		level,
	)
	return zap.New(&FieldFilterCore{core: core})
}

// FormatMessage turns known log messages into short human lines.
func FormatMessage(msg string, fields []zapcore.Field) string {
	switch {
	case strings.HasPrefix(msg, "Price updated"):
		return fmt.Sprintf("%s%s $%s%s", ColorBlue, fieldValue(fields, "symbol"), fieldValue(fields, "price"), ColorReset)

	case strings.HasPrefix(msg, "Price fetch failed"):
		return fmt.Sprintf("%s%s price unavailable: %s%s", ColorYellow, fieldValue(fields, "symbol"), fieldValue(fields, "error"), ColorReset)

	case strings.HasPrefix(msg, "Quote"):
		return fmt.Sprintf("%s%s %s -> %s %s%s",
			ColorCyan,
			fieldValue(fields, "from_amount"), fieldValue(fields, "from"),
			fieldValue(fields, "to_amount"), fieldValue(fields, "to"),
			ColorReset)

	case strings.HasPrefix(msg, "Swap recorded"):
		return fmt.Sprintf("%sSwap %s recorded%s", ColorGreen+ColorBold, shortenID(fieldValue(fields, "id")), ColorReset)

	case strings.HasPrefix(msg, "Metrics listening"):
		return fmt.Sprintf("%sMetrics on %s%s", ColorPurple, fieldValue(fields, "addr"), ColorReset)

	default:
		return msg
	}
}

func fieldValue(fields []zapcore.Field, key string) string {
	for _, f := range fields {
		if f.Key != key {
			continue
		}
		if f.Type == zapcore.StringType {
			return f.String
		}
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		return fmt.Sprintf("%v", enc.Fields[key])
	}
	return ""
}

func shortenID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FieldFilterCore rewrites known messages and drops structured fields so
// console output stays readable.
type FieldFilterCore struct {
	core   zapcore.Core
	fields []zapcore.Field
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &FieldFilterCore{core: c.core, fields: merged}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	entry.Message = FormatMessage(entry.Message, all)
	return c.core.Write(entry, nil)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}
