package config

import (
	"strings"

	"go.uber.org/zap"
)

// NewLogger builds the application logger from LOG_LEVEL and LOG_FORMAT.
// Production always logs JSON.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.LogFormat == "json" || cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return zapCfg.Build()
}
