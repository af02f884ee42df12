// Package logger holds the process-wide zap logger. Handlers, provider
// clients, and background jobs all log through L or S; main calls Init once
// with the service identity from config.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  *zap.Logger
	sugar *zap.SugaredLogger
)

// Init builds the global logger. env selects the encoder: "dev" gets a
// colored console encoder, anything else structured JSON with ISO-8601
// timestamps. level overrides the encoder default when it parses. The
// service and env names are stamped on every entry so adapter logs stay
// attributable in shared sinks.
func Init(service, env, level string) {
	var cfg zap.Config

	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.InitialFields = map[string]interface{}{
		"service": service,
		"env":     env,
	}

	l, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		panic("logger init: " + err.Error())
	}

	base = l
	sugar = l.Sugar()
}

// L returns the structured logger for hot paths.
func L() *zap.Logger {
	if base == nil {
		Init("dex-adapter", "dev", "info")
	}
	return base
}

// S returns the sugared logger.
func S() *zap.SugaredLogger {
	if sugar == nil {
		Init("dex-adapter", "dev", "info")
	}
	return sugar
}

// Sync flushes buffered entries; defer it in main.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
