package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console logger for a verbosity level:
// 0 = warnings and errors, 1 = info, 2 = debug.
func New(verbose int) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(Level(verbose)),
	)
	return zap.New(core).Sugar()
}

func Level(verbose int) zapcore.Level {
	switch {
	case verbose <= 0:
		return zapcore.WarnLevel
	case verbose == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Nop discards everything; handy for tests and library callers.
func Nop() *zap.SugaredLogger { return zap.NewNop().Sugar() }
