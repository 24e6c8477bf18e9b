package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ppaja/filemerge/internal/matcher"
	"github.com/Ppaja/filemerge/internal/serialize"
	"github.com/Ppaja/filemerge/internal/session"
	"github.com/Ppaja/filemerge/internal/tokenizer"
	"github.com/Ppaja/filemerge/internal/tree"
)

// CommandMerge labels events emitted by the merge pipeline.
const CommandMerge = "merge"

// MergeOptions configures one scan-and-merge run.
type MergeOptions struct {
	Root            string
	IgnorePatterns  []string
	CaseInsensitive bool
	MaxDepth        int
	Format          serialize.Format
	OutputPath      string
	// SelectedPaths, when non-nil, replaces the default everything-selected
	// state with a saved selection before serializing.
	SelectedPaths []string
	TokenCounter  tokenizer.Counter
	TokenModel    string
	GeneratedAt   time.Time
}

type emitter struct {
	ctx     context.Context
	out     chan<- Event
	command string
}

func newEmitter(ctx context.Context, out chan<- Event, command string) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out, command: command}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	event.Version = SchemaVersion
	if event.Command == "" {
		event.Command = e.command
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(path, message string) {
	trimmed := strings.TrimRight(message, "\n")
	if trimmed == "" {
		return
	}
	_ = e.send(Event{
		Kind:    EventKindWarning,
		Path:    path,
		Message: &LogEvent{Level: "warning", Message: trimmed},
	})
}

func (e *emitter) fail(path string, failure error) error {
	_ = e.send(Event{Kind: EventKindError, Path: path, Err: &ErrorEvent{Message: failure.Error()}})
	return failure
}

// StreamMerge runs the full pipeline against opts and emits progress events
// on out. The channel is not closed by StreamMerge; the caller owns it. The
// returned error mirrors the terminal error event, nil on success.
func StreamMerge(ctx context.Context, opts MergeOptions, out chan<- Event) error {
	if opts.Root == "" {
		return fmt.Errorf("stream: merge root path is empty")
	}

	pipelineEmitter := newEmitter(ctx, out, CommandMerge)
	if startError := pipelineEmitter.send(Event{Kind: EventKindStart, Path: opts.Root}); startError != nil {
		return startError
	}

	ignoreMatcher := matcher.New(opts.IgnorePatterns, matcher.Options{CaseInsensitive: opts.CaseInsensitive})
	rootNode, scanWarnings, buildError := tree.Build(ctx, opts.Root, ignoreMatcher, tree.BuildOptions{
		MaxDepth: opts.MaxDepth,
		Progress: func(entriesScanned int) {
			_ = pipelineEmitter.send(Event{
				Kind: EventKindScanProgress,
				Path: opts.Root,
				Scan: &ScanProgressEvent{EntriesScanned: entriesScanned},
			})
		},
	})
	if buildError != nil {
		return pipelineEmitter.fail(opts.Root, buildError)
	}
	for _, scanWarning := range scanWarnings {
		pipelineEmitter.warn(opts.Root, scanWarning)
	}

	var droppedPaths []string
	if opts.SelectedPaths != nil {
		droppedPaths = session.ApplySelection(rootNode, opts.SelectedPaths)
		for _, droppedPath := range droppedPaths {
			pipelineEmitter.warn(droppedPath, "saved selection no longer exists, dropped")
		}
	}

	totalNodes := 0
	rootNode.Walk(func(*tree.Node) {
		totalNodes++
	})
	if treeError := pipelineEmitter.send(Event{
		Kind: EventKindTree,
		Path: opts.Root,
		Tree: &TreeEvent{
			TotalNodes:    totalNodes,
			SelectedFiles: len(rootNode.SelectedFiles()),
			DroppedPaths:  len(droppedPaths),
		},
	}); treeError != nil {
		return treeError
	}

	report, serializeError := serialize.Serialize(ctx, rootNode, serialize.Options{
		Format:       opts.Format,
		OutputPath:   opts.OutputPath,
		GeneratedAt:  opts.GeneratedAt,
		TokenCounter: opts.TokenCounter,
		Progress: func(bytesWritten int64) {
			_ = pipelineEmitter.send(Event{
				Kind:  EventKindWriteProgress,
				Path:  opts.OutputPath,
				Write: &WriteProgressEvent{BytesWritten: bytesWritten},
			})
		},
	})
	if serializeError != nil {
		return pipelineEmitter.fail(opts.OutputPath, serializeError)
	}
	for _, reportWarning := range report.Warnings {
		pipelineEmitter.warn(opts.Root, reportWarning)
	}

	summary := &SummaryEvent{
		Files:        report.FilesMerged,
		FilesOmitted: report.FilesOmitted,
		Bytes:        report.BytesWritten,
		OutputPath:   report.OutputPath,
	}
	if report.TokensCounted {
		summary.Tokens = report.TokenCount
		summary.Model = opts.TokenModel
	}
	if summaryError := pipelineEmitter.send(Event{Kind: EventKindSummary, Path: opts.Root, Summary: summary}); summaryError != nil {
		return summaryError
	}
	return pipelineEmitter.send(Event{Kind: EventKindDone, Path: opts.Root})
}
