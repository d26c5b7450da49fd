package logger

import (
	"fmt"

	"github.com/hemverk/order-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide zap logger. JSON output is used when
// configured explicitly or when running in production; everything else gets
// the colorized development encoder.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	useJSON := cfg.Format == "json" || appCfg.Environment == "production"

	var base zap.Config
	if useJSON {
		base = zap.NewProductionConfig()
	} else {
		base = zap.NewDevelopmentConfig()
		base.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		base.Level = zap.NewAtomicLevelAt(level)
	} else {
		base.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	// Every log line carries the app name and environment.
	base.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	log, err := base.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
