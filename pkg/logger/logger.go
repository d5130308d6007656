// Package logger provides the process-wide structured logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It defaults to a no-op logger so
// packages can log before Init runs (and in tests that never call it).
var Log = zap.NewNop()

// Init builds the global logger. When logFile is set, JSON production
// output goes to the file and stdout; otherwise a console development
// logger is used.
func Init(level string, logFile string) error {
	cfg := buildConfig(level, logFile)

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = log
	return nil
}

func buildConfig(level string, logFile string) zap.Config {
	var cfg zap.Config

	if logFile != "" {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{logFile, "stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	return cfg
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries.
func Sync() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}
