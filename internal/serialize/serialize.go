// Package serialize renders a selection tree into a merged report artifact.
package serialize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ppaja/filemerge/internal/tokenizer"
	"github.com/Ppaja/filemerge/internal/tree"
)

// Format selects the report layout.
type Format string

const (
	// FormatPlain renders the original plain-text layout: a box-drawing tree
	// diagram followed by raw file contents.
	FormatPlain Format = "plain"
	// FormatMarkdown renders a structured markdown report with a header
	// block, an annotated tree, and fenced per-file sections.
	FormatMarkdown Format = "markdown"
)

const (
	errorUnsupportedFormatFormat = "unsupported output format %q (supported: %s, %s)"
	errorCreateOutputDirFormat   = "creating output directory %s: %w"
	errorCreateTempFormat        = "creating temporary output file in %s: %w"
	errorWriteOutputFormat       = "writing output file %s: %w"
	errorFinalizeOutputFormat    = "moving output into place at %s: %w"

	warningUnreadableContentFormat = "could not read %s: %v"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatPlain:
		return FormatPlain, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf(errorUnsupportedFormatFormat, value, FormatPlain, FormatMarkdown)
	}
}

// Options configures a serialize run.
type Options struct {
	// Format selects the report layout. Defaults to FormatPlain.
	Format Format
	// OutputPath is the final report location. Serialize writes to a
	// temporary file beside it and renames on success, so a failed run never
	// leaves a partial artifact at this path.
	OutputPath string
	// GeneratedAt stamps the markdown header. The zero value means "now".
	// Injecting a fixed time makes the output reproducible.
	GeneratedAt time.Time
	// TokenCounter, when set, accumulates a token estimate over the merged
	// text content. Binary files are excluded from the estimate.
	TokenCounter tokenizer.Counter
	// Progress, when set, receives the running byte count at every file
	// boundary.
	Progress func(bytesWritten int64)
}

// Report summarizes one completed serialize run.
type Report struct {
	OutputPath    string
	Format        Format
	FilesMerged   int
	FilesOmitted  int
	BytesWritten  int64
	TokenCount    int
	TokensCounted bool
	Warnings      []string
}

// Serialize renders the tree to options.OutputPath atomically: the report is
// written to a temporary file in the destination directory and renamed into
// place only on success. On error or cancellation the temporary file is
// removed and any prior artifact at the destination is left untouched.
func Serialize(ctx context.Context, rootNode *tree.Node, options Options) (*Report, error) {
	outputDirectory := filepath.Dir(options.OutputPath)
	if makeDirectoryError := os.MkdirAll(outputDirectory, 0o755); makeDirectoryError != nil {
		return nil, fmt.Errorf(errorCreateOutputDirFormat, outputDirectory, makeDirectoryError)
	}

	temporaryFile, temporaryFileError := os.CreateTemp(outputDirectory, ".merge-*.tmp")
	if temporaryFileError != nil {
		return nil, fmt.Errorf(errorCreateTempFormat, outputDirectory, temporaryFileError)
	}
	temporaryPath := temporaryFile.Name()

	report, writeError := Write(ctx, rootNode, temporaryFile, options)
	closeError := temporaryFile.Close()
	if writeError == nil {
		writeError = closeError
	}
	if writeError != nil {
		_ = os.Remove(temporaryPath)
		return nil, fmt.Errorf(errorWriteOutputFormat, options.OutputPath, writeError)
	}

	if renameError := os.Rename(temporaryPath, options.OutputPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return nil, fmt.Errorf(errorFinalizeOutputFormat, options.OutputPath, renameError)
	}
	report.OutputPath = options.OutputPath
	return report, nil
}

// Write renders the tree to an arbitrary writer. It underlies Serialize and
// serves destinations that are not files, such as the clipboard.
func Write(ctx context.Context, rootNode *tree.Node, destination io.Writer, options Options) (*Report, error) {
	format := options.Format
	if format == "" {
		format = FormatPlain
	}

	countingDestination := &countingWriter{destination: destination}
	emitter := &reportEmitter{
		writer:  countingDestination,
		options: options,
		report:  &Report{Format: format},
	}

	var renderError error
	switch format {
	case FormatMarkdown:
		renderError = emitter.writeMarkdown(ctx, rootNode)
	case FormatPlain:
		renderError = emitter.writePlain(ctx, rootNode)
	default:
		return nil, fmt.Errorf(errorUnsupportedFormatFormat, string(format), FormatPlain, FormatMarkdown)
	}
	if renderError != nil {
		return nil, renderError
	}

	emitter.report.BytesWritten = countingDestination.bytesWritten
	return emitter.report, nil
}

// countingWriter tracks the number of bytes passed through to destination.
type countingWriter struct {
	destination  io.Writer
	bytesWritten int64
}

func (writer *countingWriter) Write(data []byte) (int, error) {
	written, writeError := writer.destination.Write(data)
	writer.bytesWritten += int64(written)
	return written, writeError
}

// reportEmitter carries the shared state of one render pass.
type reportEmitter struct {
	writer  *countingWriter
	options Options
	report  *Report
}

func (emitter *reportEmitter) printf(format string, arguments ...any) error {
	_, writeError := fmt.Fprintf(emitter.writer, format, arguments...)
	return writeError
}

func (emitter *reportEmitter) print(text string) error {
	_, writeError := io.WriteString(emitter.writer, text)
	return writeError
}

// fileBoundary checks cancellation and reports progress between files.
func (emitter *reportEmitter) fileBoundary(ctx context.Context) error {
	if cancellationError := ctx.Err(); cancellationError != nil {
		return cancellationError
	}
	if emitter.options.Progress != nil {
		emitter.options.Progress(emitter.writer.bytesWritten)
	}
	return nil
}

// countTokens adds the given text to the running token estimate.
func (emitter *reportEmitter) countTokens(text string) {
	if emitter.options.TokenCounter == nil {
		return
	}
	tokenCount, countError := emitter.options.TokenCounter.CountString(text)
	if countError != nil {
		return
	}
	emitter.report.TokenCount += tokenCount
	emitter.report.TokensCounted = true
}

func formatUnreadableWarning(relativePath string, readError error) string {
	return fmt.Sprintf(warningUnreadableContentFormat, relativePath, readError)
}

// includedFile reports whether a node contributes content to the report.
func includedFile(node *tree.Node) bool {
	return node.Kind == tree.KindFile && node.Selection == tree.Selected && !node.Ignored
}
