package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
)

// BuildLogger ensures everything printed by the logger is done to stderr.
// Progress and the run summary are printed to stdout, so application messages are kept in a separate stream.
func BuildLogger(level string) error {
	minLevel := zapcore.InfoLevel

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)

		if err != nil {
			return err
		}

		minLevel = parsed
	}

	// write syncers
	stderrSyncer := zapcore.Lock(os.Stderr)

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}),
		stderrSyncer,
		zap.NewAtomicLevelAt(minLevel),
	)

	// replace the global logger
	zap.ReplaceGlobals(zap.New(core))

	return nil
}
