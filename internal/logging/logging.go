package logging

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. Format "json" selects the production encoder,
// anything else the development console encoder.
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level.SetLevel(levelFromString(level))
	cfg.OutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "build logger")
	}
	return logger, nil
}

func levelFromString(value string) zapcore.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "":
		return zapcore.DebugLevel
	case "warning":
		value = "warn"
	}
	level, err := zapcore.ParseLevel(value)
	if err != nil {
		return zapcore.DebugLevel
	}
	return level
}
