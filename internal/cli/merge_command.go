package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Ppaja/filemerge/internal/config"
	"github.com/Ppaja/filemerge/internal/matcher"
	"github.com/Ppaja/filemerge/internal/picker"
	"github.com/Ppaja/filemerge/internal/serialize"
	"github.com/Ppaja/filemerge/internal/services/clipboard"
	"github.com/Ppaja/filemerge/internal/services/stream"
	"github.com/Ppaja/filemerge/internal/session"
	"github.com/Ppaja/filemerge/internal/tokenizer"
	"github.com/Ppaja/filemerge/internal/tree"
	"github.com/Ppaja/filemerge/internal/utils"
)

const (
	mergeCancelledMessage       = "merge cancelled, no output written"
	summaryArtifactFormat       = "merged %d files (%d omitted, %s) into %s\n"
	summaryTokensFormat         = "estimated %d tokens (%s)\n"
	summarySessionFormat        = "selection saved to %s\n"
	summaryClipboardMessage     = "report copied to clipboard\n"
	warningLineFormat           = "Warning: %s\n"
	warningDroppedPathFormat    = "Warning: %s: %s\n"
	errorCopyClipboardFormat    = "copying report to clipboard: %w"
	errorReadArtifactFormat     = "reading report %s for clipboard: %w"
	errorLoadSessionFormat      = "loading session: %w"
	errorSaveSessionFormat      = "saving session: %w"
	errorTokenizerFormat        = "preparing tokenizer: %w"
	errorEncodeEventFormat      = "encoding event: %w"
	streamEventChannelCapacity  = 64
	interactiveWithStreamDetail = "the terminal UI cannot share stdout with the event stream"
)

// mergeSettings carries the fully resolved inputs of one merge run.
type mergeSettings struct {
	rootDirectory   string
	ignorePatterns  []string
	caseInsensitive bool
	maxDepth        int
	format          serialize.Format
	outputPath      string
	tokenCounter    tokenizer.Counter
	tokenModel      string
	selectedPaths   []string
	sessionToSave   string
	copyToClipboard bool
}

// createMergeCommand returns the merge subcommand.
func createMergeCommand() *cobra.Command {
	var paths pathOptions
	var formatValue string
	var outputPath string
	var countTokens bool
	var tokenModel string
	var copyToClipboard bool
	var interactive bool
	var sessionPath string
	var saveSessionPath string
	var streamEvents bool
	var configPath string

	mergeCommand := &cobra.Command{
		Use:     mergeUse,
		Aliases: []string{"m"},
		Short:   mergeShortDescription,
		Long:    mergeLongDescription,
		Example: mergeExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if streamEvents && interactive {
				return fmt.Errorf(errorStreamConflictFormat+": %s", streamFlagName, interactiveFlagName, interactiveWithStreamDetail)
			}
			if streamEvents && saveSessionPath != "" {
				return fmt.Errorf(errorStreamConflictFormat, streamFlagName, saveSessionFlagName)
			}

			rootDirectory, rootError := resolveRootDirectory(arguments)
			if rootError != nil {
				return rootError
			}

			configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: rootDirectory,
				ExplicitFilePath: configPath,
			})
			if configurationError != nil {
				return fmt.Errorf(errorLoadConfigurationFormat, configurationError)
			}
			applyConfigurationDefaults(command, configuration, &paths, &formatValue, &outputPath)
			if !command.Flags().Changed(clipboardFlagName) && configuration.Report.Clipboard != nil {
				copyToClipboard = *configuration.Report.Clipboard
			}
			if !command.Flags().Changed(tokensFlagName) && configuration.Tokens.Enabled != nil {
				countTokens = *configuration.Tokens.Enabled
			}
			if !command.Flags().Changed(modelFlagName) && configuration.Tokens.Model != "" {
				tokenModel = configuration.Tokens.Model
			}

			outputFormat, formatError := parseOutputFormat(formatValue)
			if formatError != nil {
				return formatError
			}
			ignorePatterns, patternsError := loadIgnorePatterns(rootDirectory, paths)
			if patternsError != nil {
				return patternsError
			}

			settings := mergeSettings{
				rootDirectory:   rootDirectory,
				ignorePatterns:  ignorePatterns,
				caseInsensitive: paths.caseInsensitive,
				maxDepth:        paths.maxDepth,
				format:          outputFormat,
				outputPath:      outputPath,
				tokenModel:      tokenModel,
				sessionToSave:   saveSessionPath,
				copyToClipboard: copyToClipboard,
			}
			if countTokens {
				tokenCounter, encodingName, tokenizerError := tokenizer.NewCounter(tokenModel)
				if tokenizerError != nil {
					return fmt.Errorf(errorTokenizerFormat, tokenizerError)
				}
				settings.tokenCounter = tokenCounter
				settings.tokenModel = encodingName
			}
			if sessionPath != "" {
				savedSession, sessionError := session.Load(sessionPath)
				if sessionError != nil {
					return fmt.Errorf(errorLoadSessionFormat, sessionError)
				}
				settings.selectedPaths = savedSession.SelectedPaths
			}

			if streamEvents {
				return runStreamedMerge(command, settings)
			}
			return runDirectMerge(command, settings, interactive)
		},
	}

	addPathFlags(mergeCommand, &paths)
	mergeCommand.Flags().StringVar(&formatValue, formatFlagName, string(serialize.FormatPlain), formatFlagDescription)
	mergeCommand.Flags().StringVarP(&outputPath, outputFlagName, "o", defaultOutputPath(), outputFlagDescription)
	mergeCommand.Flags().BoolVar(&countTokens, tokensFlagName, false, tokensFlagDescription)
	mergeCommand.Flags().StringVar(&tokenModel, modelFlagName, defaultTokenModel, modelFlagDescription)
	mergeCommand.Flags().BoolVar(&copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	mergeCommand.Flags().BoolVarP(&interactive, interactiveFlagName, "i", false, interactiveFlagDescription)
	mergeCommand.Flags().StringVar(&sessionPath, sessionFlagName, "", sessionFlagDescription)
	mergeCommand.Flags().StringVar(&saveSessionPath, saveSessionFlagName, "", saveSessionFlagDescription)
	mergeCommand.Flags().BoolVar(&streamEvents, streamFlagName, false, streamFlagDescription)
	mergeCommand.Flags().StringVar(&configPath, configFlagName, "", configFlagDescription)
	return mergeCommand
}

// runDirectMerge builds the tree in process, optionally hands it to the
// interactive picker, and serializes the result. This path owns the tree, so
// it can also persist the final selection as a session.
func runDirectMerge(command *cobra.Command, settings mergeSettings, interactive bool) error {
	ignoreMatcher := matcher.New(settings.ignorePatterns, matcher.Options{CaseInsensitive: settings.caseInsensitive})
	rootNode, scanWarnings, buildError := tree.Build(command.Context(), settings.rootDirectory, ignoreMatcher, tree.BuildOptions{
		MaxDepth: settings.maxDepth,
	})
	if buildError != nil {
		return buildError
	}
	printWarnings(command.ErrOrStderr(), scanWarnings)

	if settings.selectedPaths != nil {
		droppedPaths := session.ApplySelection(rootNode, settings.selectedPaths)
		for _, droppedPath := range droppedPaths {
			fmt.Fprintf(command.ErrOrStderr(), warningDroppedPathFormat, droppedPath, "saved selection no longer exists, dropped")
		}
	}

	if interactive {
		confirmed, pickerError := picker.Run(rootNode)
		if pickerError != nil {
			return pickerError
		}
		if !confirmed {
			fmt.Fprintln(command.OutOrStdout(), mergeCancelledMessage)
			return nil
		}
	}

	report, serializeError := serialize.Serialize(command.Context(), rootNode, serialize.Options{
		Format:       settings.format,
		OutputPath:   settings.outputPath,
		TokenCounter: settings.tokenCounter,
	})
	if serializeError != nil {
		return serializeError
	}
	printWarnings(command.ErrOrStderr(), report.Warnings)

	if settings.sessionToSave != "" {
		sessionRecord := session.Session{
			RootPath:        settings.rootDirectory,
			SelectedPaths:   session.CaptureSelection(rootNode),
			IgnorePatterns:  settings.ignorePatterns,
			OutputFormat:    string(settings.format),
			OutputPath:      settings.outputPath,
			MaxDepth:        settings.maxDepth,
			CaseInsensitive: settings.caseInsensitive,
		}
		if saveError := session.Save(settings.sessionToSave, sessionRecord); saveError != nil {
			return fmt.Errorf(errorSaveSessionFormat, saveError)
		}
		fmt.Fprintf(command.OutOrStdout(), summarySessionFormat, settings.sessionToSave)
	}

	printReportSummary(command.OutOrStdout(), report, settings.tokenModel)
	return finishWithClipboard(command, settings)
}

// runStreamedMerge runs the pipeline as a producer goroutine and renders its
// events as JSON Lines on stdout.
func runStreamedMerge(command *cobra.Command, settings mergeSettings) error {
	encoder := json.NewEncoder(command.OutOrStdout())
	dispatchError := dispatchStream(command.Context(),
		func(ctx context.Context, events chan<- stream.Event) error {
			return stream.StreamMerge(ctx, stream.MergeOptions{
				Root:            settings.rootDirectory,
				IgnorePatterns:  settings.ignorePatterns,
				CaseInsensitive: settings.caseInsensitive,
				MaxDepth:        settings.maxDepth,
				Format:          settings.format,
				OutputPath:      settings.outputPath,
				SelectedPaths:   settings.selectedPaths,
				TokenCounter:    settings.tokenCounter,
				TokenModel:      settings.tokenModel,
			}, events)
		},
		func(event stream.Event) error {
			if encodeError := encoder.Encode(event); encodeError != nil {
				return fmt.Errorf(errorEncodeEventFormat, encodeError)
			}
			return nil
		},
	)
	if dispatchError != nil {
		return dispatchError
	}
	return finishWithClipboard(command, settings)
}

// dispatchStream runs produce and consume concurrently over a shared event
// channel. The channel closes when the producer returns, which ends the
// consumer loop; either side failing cancels the other.
func dispatchStream(ctx context.Context, produce func(context.Context, chan<- stream.Event) error, consume func(stream.Event) error) error {
	group, groupContext := errgroup.WithContext(ctx)
	events := make(chan stream.Event, streamEventChannelCapacity)

	group.Go(func() error {
		defer close(events)
		return produce(groupContext, events)
	})
	group.Go(func() error {
		for {
			select {
			case <-groupContext.Done():
				return groupContext.Err()
			case event, open := <-events:
				if !open {
					return nil
				}
				if consumeError := consume(event); consumeError != nil {
					return consumeError
				}
			}
		}
	})
	return group.Wait()
}

// finishWithClipboard copies the finished artifact to the clipboard when
// requested.
func finishWithClipboard(command *cobra.Command, settings mergeSettings) error {
	if !settings.copyToClipboard {
		return nil
	}
	artifactContent, readError := os.ReadFile(settings.outputPath)
	if readError != nil {
		return fmt.Errorf(errorReadArtifactFormat, settings.outputPath, readError)
	}
	copier := clipboard.NewService()
	if copyError := copier.Copy(string(artifactContent)); copyError != nil {
		return fmt.Errorf(errorCopyClipboardFormat, copyError)
	}
	fmt.Fprint(command.OutOrStdout(), summaryClipboardMessage)
	return nil
}

// printWarnings writes each warning on its own stderr line.
func printWarnings(destination io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(destination, warningLineFormat, warning)
	}
}

// printReportSummary writes the one-line result of a completed merge.
func printReportSummary(destination io.Writer, report *serialize.Report, tokenModel string) {
	fmt.Fprintf(destination, summaryArtifactFormat,
		report.FilesMerged, report.FilesOmitted, utils.FormatFileSize(report.BytesWritten), report.OutputPath)
	if report.TokensCounted {
		fmt.Fprintf(destination, summaryTokensFormat, report.TokenCount, tokenModel)
	}
}
