package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from "logging.level" (debug, info, warn,
// error) and "logging.format" (json, console).
func NewLogger(v *viper.Viper) (*zap.Logger, error) {
	return newLogger(v.GetString("logging.level"), v.GetString("logging.format"))
}

func newLogger(level, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zc zap.Config
	switch format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "json", "":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", format)
	}
	zc.Level = zap.NewAtomicLevelAt(zapLevel)

	return zc.Build()
}
