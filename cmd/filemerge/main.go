package main

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/Ppaja/filemerge/internal/cli"
	"github.com/Ppaja/filemerge/internal/utils"
)

// main is the entry point for the filemerge command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(zapcore.InfoLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
