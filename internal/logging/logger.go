// Package logging provides zap logger helpers.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a zap.Logger writing human-readable output to stdout and, when
// logFile is non-empty, JSON lines to a rotating file.
func New(development bool, logFile string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if development {
		level = zapcore.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.TimeKey = "ts"
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if development {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stdout),
			level,
		),
	}

	if logFile != "" {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "ts"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileCfg),
			fileSink,
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
