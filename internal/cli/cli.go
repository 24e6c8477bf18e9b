// Package cli wires the filemerge commands together with Cobra.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ppaja/filemerge/internal/config"
	"github.com/Ppaja/filemerge/internal/serialize"
	"github.com/Ppaja/filemerge/internal/utils"
)

const (
	rootUse              = "filemerge"
	rootShortDescription = "Merge a directory tree into a single shareable file"
	rootLongDescription  = `filemerge scans a directory, lets you choose which files to include, and
writes the selected contents into one artifact together with a tree diagram.
The artifact is suited for pasting into a chat assistant or attaching to a
report.`

	versionFlagName        = "version"
	versionFlagDescription = "Print the application version and exit"
	versionTemplate        = "filemerge version %s\n"

	mergeUse              = "merge [directory]"
	mergeShortDescription = "Merge the selected files of a directory into one report"
	mergeLongDescription  = `Merge scans the directory, applies ignore patterns, and writes every
selected file into a single report. All eligible files start selected; use
--interactive to adjust the selection, or --session to restore a saved one.`
	mergeExample = `  filemerge merge .
  filemerge merge ~/project --format markdown --output report.md
  filemerge merge . --interactive --save-session .filemerge-session.json
  filemerge merge . -e node_modules -e "*.log" --tokens`

	treeUse              = "tree [directory]"
	treeShortDescription = "Print the directory tree that a merge would include"
	treeExample          = `  filemerge tree .
  filemerge tree ~/project -e dist`

	initUse              = "init"
	initShortDescription = "Write a starter configuration file"
	initLongDescription  = `Init writes a configuration file with the default settings, either in the
current directory or in the per-user global location.`

	formatFlagName             = "format"
	formatFlagDescription      = "Output format: plain or markdown"
	outputFlagName             = "output"
	outputFlagDescription      = "Path of the merge artifact"
	exclusionFlagName          = "e"
	exclusionFlagDescription   = "Exclusion pattern (repeatable)"
	noIgnoreFlagName           = "no-ignore"
	noIgnoreFlagDescription    = "Skip patterns from " + utils.IgnoreFileName
	includeGitFlagName         = "git"
	includeGitFlagDescription  = "Include the " + utils.GitDirectoryName + " directory in the scan"
	caseInsensitiveFlagName    = "case-insensitive"
	caseInsensitiveFlagDesc    = "Match ignore patterns without regard to case"
	maxDepthFlagName           = "max-depth"
	maxDepthFlagDescription    = "Limit the scan depth (0 means unlimited)"
	tokensFlagName             = "tokens"
	tokensFlagDescription      = "Estimate the token count of the merged content"
	modelFlagName              = "model"
	modelFlagDescription       = "Model whose tokenizer sizes the token estimate"
	clipboardFlagName          = "clipboard"
	clipboardFlagDescription   = "Copy the merged report to the system clipboard"
	interactiveFlagName        = "interactive"
	interactiveFlagDescription = "Pick the files to merge in a terminal UI"
	sessionFlagName            = "session"
	sessionFlagDescription     = "Restore the file selection from a session file"
	saveSessionFlagName        = "save-session"
	saveSessionFlagDescription = "Write the final file selection to a session file"
	streamFlagName             = "stream"
	streamFlagDescription      = "Emit progress as JSON Lines on stdout"
	configFlagName             = "config"
	configFlagDescription      = "Path of the configuration file to load"
	initGlobalFlagName         = "global"
	initGlobalFlagDescription  = "Write the per-user global configuration"
	initForceFlagName          = "force"
	initForceFlagDescription   = "Overwrite an existing configuration file"

	errorResolveDirectoryFormat  = "resolving directory '%s': %w"
	errorDirectoryMissingFormat  = "directory '%s' does not exist"
	errorStatDirectoryFormat     = "inspecting directory '%s': %w"
	errorNotDirectoryFormat      = "'%s' is not a directory"
	errorLoadConfigurationFormat = "loading configuration: %w"
	errorLoadPatternsFormat      = "loading ignore patterns: %w"
	errorStreamConflictFormat    = "--%s cannot be combined with --%s"

	defaultTokenModel = "gpt-4o"
)

// Execute runs the root command.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.ExecuteContext(signalContext())
}

// signalContext cancels on SIGINT and SIGTERM so a long scan or merge stops
// cleanly, leaving any prior artifact untouched.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createMergeCommand(),
		createTreeCommand(),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// pathOptions stores configuration for scan-related flags.
type pathOptions struct {
	exclusionPatterns []string
	disableIgnoreFile bool
	includeGit        bool
	caseInsensitive   bool
	maxDepth          int
}

// addPathFlags registers scan-related flags on the command.
func addPathFlags(command *cobra.Command, options *pathOptions) {
	command.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	command.Flags().BoolVar(&options.disableIgnoreFile, noIgnoreFlagName, false, noIgnoreFlagDescription)
	command.Flags().BoolVar(&options.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	command.Flags().BoolVar(&options.caseInsensitive, caseInsensitiveFlagName, false, caseInsensitiveFlagDesc)
	command.Flags().IntVar(&options.maxDepth, maxDepthFlagName, 0, maxDepthFlagDescription)
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var writeGlobal bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initializeError := config.InitializeConfiguration(config.InitOptions{
				Target: target,
				Force:  forceOverwrite,
			})
			if initializeError != nil {
				return initializeError
			}
			fmt.Fprintf(command.OutOrStdout(), "wrote %s\n", writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&writeGlobal, initGlobalFlagName, false, initGlobalFlagDescription)
	initCommand.Flags().BoolVar(&forceOverwrite, initForceFlagName, false, initForceFlagDescription)
	return initCommand
}

// resolveRootDirectory turns the optional positional argument into a
// validated absolute directory path. Missing argument means the current
// directory.
func resolveRootDirectory(arguments []string) (string, error) {
	inputPath := "."
	if len(arguments) > 0 {
		inputPath = arguments[0]
	}
	absolutePath, absoluteError := filepath.Abs(inputPath)
	if absoluteError != nil {
		return "", fmt.Errorf(errorResolveDirectoryFormat, inputPath, absoluteError)
	}
	cleanPath := filepath.Clean(absolutePath)
	fileInformation, statError := os.Stat(cleanPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", fmt.Errorf(errorDirectoryMissingFormat, inputPath)
		}
		return "", fmt.Errorf(errorStatDirectoryFormat, inputPath, statError)
	}
	if !fileInformation.IsDir() {
		return "", fmt.Errorf(errorNotDirectoryFormat, inputPath)
	}
	return cleanPath, nil
}

// applyConfigurationDefaults fills the flag-backed options from the loaded
// configuration wherever the user did not set the flag explicitly.
func applyConfigurationDefaults(command *cobra.Command, configuration config.ApplicationConfiguration, paths *pathOptions, formatValue *string, outputPath *string) {
	flagSet := command.Flags()
	if !flagSet.Changed(formatFlagName) && configuration.Report.Format != "" {
		*formatValue = configuration.Report.Format
	}
	if outputPath != nil && !flagSet.Changed(outputFlagName) && configuration.Report.Output != "" {
		*outputPath = configuration.Report.Output
	}
	if !flagSet.Changed(maxDepthFlagName) && configuration.Report.MaxDepth != nil {
		paths.maxDepth = *configuration.Report.MaxDepth
	}
	if !flagSet.Changed(noIgnoreFlagName) && configuration.Paths.UseIgnoreFile != nil {
		paths.disableIgnoreFile = !*configuration.Paths.UseIgnoreFile
	}
	if !flagSet.Changed(includeGitFlagName) && configuration.Paths.IncludeGit != nil {
		paths.includeGit = *configuration.Paths.IncludeGit
	}
	if !flagSet.Changed(caseInsensitiveFlagName) && configuration.Paths.CaseInsensitive != nil {
		paths.caseInsensitive = *configuration.Paths.CaseInsensitive
	}
	paths.exclusionPatterns = append(configuration.Paths.Exclude, paths.exclusionPatterns...)
}

// loadIgnorePatterns resolves the effective pattern list for one scan root.
func loadIgnorePatterns(rootDirectory string, paths pathOptions) ([]string, error) {
	patterns, loadError := config.LoadCombinedIgnorePatterns(
		rootDirectory,
		paths.exclusionPatterns,
		!paths.disableIgnoreFile,
		paths.includeGit,
	)
	if loadError != nil {
		return nil, fmt.Errorf(errorLoadPatternsFormat, loadError)
	}
	return patterns, nil
}

// defaultOutputPath is the artifact location used when neither the flag nor
// the configuration names one.
func defaultOutputPath() string {
	return filepath.Join(utils.DefaultOutputDirectoryName, utils.DefaultOutputFileName)
}

// parseOutputFormat validates the format value after configuration and flags
// have been applied.
func parseOutputFormat(value string) (serialize.Format, error) {
	if value == "" {
		return serialize.FormatPlain, nil
	}
	return serialize.ParseFormat(value)
}
