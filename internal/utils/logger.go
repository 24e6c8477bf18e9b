package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewApplicationLogger constructs the console logger used by the filemerge
// entry point. Messages go to stderr so a report streamed to stdout stays
// clean; the threshold keeps warnings visible while progress noise stays
// opt-in.
func NewApplicationLogger(threshold zapcore.Level) (*zap.Logger, error) {
	loggerConfig := zap.Config{
		Level:    zap.NewAtomicLevelAt(threshold),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			EncodeLevel: zapcore.CapitalLevelEncoder,
			LineEnding:  zapcore.DefaultLineEnding,
		},
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	return loggerConfig.Build()
}
