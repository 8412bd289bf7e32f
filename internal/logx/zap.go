package logx

import (
	"time"

	"go.uber.org/zap"
)

// ZapAdapter adapts a zap.Logger to the logx.Logger interface.
type ZapAdapter struct {
	l *zap.Logger
}

// NewZapAdapter returns a Logger implementation backed by the provided *zap.Logger.
func NewZapAdapter(l *zap.Logger) Logger {
	return &ZapAdapter{l: l}
}

// Debug logs a debug-level message.
func (z *ZapAdapter) Debug(msg string, fields ...Field) { z.l.Debug(msg, toZapFields(fields)...) }

// Info logs an info-level message.
func (z *ZapAdapter) Info(msg string, fields ...Field) { z.l.Info(msg, toZapFields(fields)...) }

// Warn logs a warning-level message.
func (z *ZapAdapter) Warn(msg string, fields ...Field) { z.l.Warn(msg, toZapFields(fields)...) }

// Error logs an error-level message.
func (z *ZapAdapter) Error(msg string, fields ...Field) { z.l.Error(msg, toZapFields(fields)...) }

// With returns a child logger.
func (z *ZapAdapter) With(fields ...Field) Logger {
	return &ZapAdapter{l: z.l.With(toZapFields(fields)...)}
}

// Sync flushes buffered entries.
func (z *ZapAdapter) Sync() error { return z.l.Sync() }

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, toZapField(f))
	}
	return out
}

func toZapField(f Field) zap.Field {
	switch f.Kind {
	case KindString:
		return zap.String(f.Key, f.Value.(string))
	case KindInt64:
		return zap.Int64(f.Key, f.Value.(int64))
	case KindBool:
		return zap.Bool(f.Key, f.Value.(bool))
	case KindFloat64:
		return zap.Float64(f.Key, f.Value.(float64))
	case KindTime:
		return zap.Time(f.Key, f.Value.(time.Time))
	case KindDuration:
		return zap.Duration(f.Key, f.Value.(time.Duration))
	default:
		return zap.Any(f.Key, f.Value)
	}
}
