package pkg

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelDebug
)

var log_level_atom = zap.NewAtomicLevelAt(zapcore.ErrorLevel)

var base_logger = func() *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), log_level_atom)
	return zap.New(core)
}()

func SetLogLevel(level LogLevel) {
	switch level {
	case LogLevelNone:
		// above fatal: nothing gets through
		log_level_atom.SetLevel(zapcore.FatalLevel + 1)
	case LogLevelErrOnly:
		log_level_atom.SetLevel(zapcore.ErrorLevel)
	case LogLevelDebug:
		log_level_atom.SetLevel(zapcore.DebugLevel)
	}
}

// Logger exposes the underlying zap logger for structured call sites.
func Logger() *zap.Logger { return base_logger }

var sugar = base_logger.Sugar()

var (
	InfoLog  = sugar.Info
	ErrorLog = sugar.Error
	FatalLog = sugar.Fatal
	WarnLog  = sugar.Warn
	DebugLog = sugar.Debug
)
