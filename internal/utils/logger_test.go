package utils_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/Ppaja/filemerge/internal/utils"
)

func TestNewApplicationLoggerHonorsThreshold(t *testing.T) {
	infoLogger, infoError := utils.NewApplicationLogger(zapcore.InfoLevel)
	if infoError != nil {
		t.Fatalf("building info logger: %v", infoError)
	}
	defer infoLogger.Sync()
	if infoLogger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("info-level logger should suppress debug messages")
	}
	if !infoLogger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("info-level logger should pass warnings")
	}

	debugLogger, debugError := utils.NewApplicationLogger(zapcore.DebugLevel)
	if debugError != nil {
		t.Fatalf("building debug logger: %v", debugError)
	}
	defer debugLogger.Sync()
	if !debugLogger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug-level logger should pass debug messages")
	}
}
