package logx

import (
	"context"
	"log/slog"
	"time"
)

// SlogAdapter writes through a *slog.Logger.
type SlogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter wraps l.
func NewSlogAdapter(l *slog.Logger) Logger {
	return &SlogAdapter{l: l}
}

func (s *SlogAdapter) Debug(msg string, fields ...Field) { s.log(slog.LevelDebug, msg, fields) }
func (s *SlogAdapter) Info(msg string, fields ...Field)  { s.log(slog.LevelInfo, msg, fields) }
func (s *SlogAdapter) Warn(msg string, fields ...Field)  { s.log(slog.LevelWarn, msg, fields) }
func (s *SlogAdapter) Error(msg string, fields ...Field) { s.log(slog.LevelError, msg, fields) }

func (s *SlogAdapter) With(fields ...Field) Logger {
	return &SlogAdapter{l: s.l.With(toSlogArgs(fields)...)}
}

// Sync is a no-op: slog handlers write synchronously.
func (s *SlogAdapter) Sync() error { return nil }

func (s *SlogAdapter) log(level slog.Level, msg string, fields []Field) {
	ctx := context.Background()
	// не собираем атрибуты, если уровень выключен
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.LogAttrs(ctx, level, msg, toSlogAttrs(fields)...)
}

func toSlogAttr(f Field) slog.Attr {
	switch f.Kind {
	case KindString:
		return slog.String(f.Key, f.Value.(string))
	case KindInt64:
		return slog.Int64(f.Key, f.Value.(int64))
	case KindBool:
		return slog.Bool(f.Key, f.Value.(bool))
	case KindFloat64:
		return slog.Float64(f.Key, f.Value.(float64))
	case KindTime:
		return slog.Time(f.Key, f.Value.(time.Time))
	case KindDuration:
		return slog.Duration(f.Key, f.Value.(time.Duration))
	default:
		return slog.Any(f.Key, f.Value)
	}
}

func toSlogAttrs(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, toSlogAttr(f))
	}
	return attrs
}

func toSlogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, toSlogAttr(f))
	}
	return args
}
