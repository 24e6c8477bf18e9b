package utils

// File names and directories recognized across the project.
const (
	// IgnoreFileName is the name of the plain-text ignore pattern file.
	IgnoreFileName = "ignore.txt"
	// ConfigFileName is the name of the application configuration file.
	ConfigFileName = ".filemerge.yaml"
	// GlobalConfigDirectoryName is the per-user directory holding the global configuration.
	GlobalConfigDirectoryName = ".filemerge"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// DefaultOutputDirectoryName is the folder the plain report is written into by default.
	DefaultOutputDirectoryName = "outputFolder"
	// DefaultOutputFileName is the default name of the plain merge artifact.
	DefaultOutputFileName = "mergeOutput.txt"
)

// Messages used by the application entry point.
const (
	// LoggerInitializationFailedMessageFormat reports a failure to construct the logger.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage reports a fatal application error.
	ApplicationExecutionFailedMessage = "application failed"
)
