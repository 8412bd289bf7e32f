package app

import (
	"log/slog"
	"os"

	"go.uber.org/zap"

	"food-delivery-Orurh/internal/config"
	"food-delivery-Orurh/internal/logx"
)

// NewLogger builds the process logger from cfg.Log. Unknown levels fall back to info.
func NewLogger(cfg *config.Config) (logx.Logger, error) {
	switch cfg.Log.Backend {
	case config.LogZap:
		zc := zap.NewProductionConfig()
		if lvl, err := zap.ParseAtomicLevel(cfg.Log.Level); err == nil {
			zc.Level = lvl
		}
		l, err := zc.Build()
		if err != nil {
			return nil, err
		}
		return logx.NewZapAdapter(l), nil
	default:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			lvl = slog.LevelInfo
		}
		base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
		return logx.NewSlogAdapter(base), nil
	}
}
