// Package stream runs the scan-and-merge pipeline as a producer emitting
// progress events on a channel, so a consumer can render them without ever
// blocking the pipeline's filesystem work.
package stream

import (
	"time"
)

// SchemaVersion identifies the event payload layout.
const SchemaVersion = 1

// EventKind names the type of a pipeline event.
type EventKind string

const (
	EventKindStart         EventKind = "start"
	EventKindScanProgress  EventKind = "scan_progress"
	EventKindTree          EventKind = "tree"
	EventKindWriteProgress EventKind = "write_progress"
	EventKindWarning       EventKind = "warning"
	EventKindSummary       EventKind = "summary"
	EventKindError         EventKind = "error"
	EventKindDone          EventKind = "done"
)

// Event is one pipeline notification.
type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	Command   string    `json:"command,omitempty"`
	Path      string    `json:"path,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	Scan    *ScanProgressEvent  `json:"scan,omitempty"`
	Write   *WriteProgressEvent `json:"write,omitempty"`
	Tree    *TreeEvent          `json:"tree,omitempty"`
	Summary *SummaryEvent       `json:"summary,omitempty"`
	Message *LogEvent           `json:"message,omitempty"`
	Err     *ErrorEvent         `json:"error,omitempty"`
}

// ScanProgressEvent reports the running entry count of a scan.
type ScanProgressEvent struct {
	EntriesScanned int `json:"entriesScanned"`
}

// WriteProgressEvent reports the running byte count of a serialize run.
type WriteProgressEvent struct {
	BytesWritten int64 `json:"bytesWritten"`
}

// TreeEvent summarizes the built tree before serialization starts.
type TreeEvent struct {
	TotalNodes    int `json:"totalNodes"`
	SelectedFiles int `json:"selectedFiles"`
	DroppedPaths  int `json:"droppedPaths,omitempty"`
}

// SummaryEvent reports the final counts of a completed merge.
type SummaryEvent struct {
	Files        int    `json:"files"`
	FilesOmitted int    `json:"filesOmitted,omitempty"`
	Bytes        int64  `json:"bytes"`
	Tokens       int    `json:"tokens,omitempty"`
	Model        string `json:"model,omitempty"`
	OutputPath   string `json:"outputPath,omitempty"`
}

// LogEvent carries a warning or informational message.
type LogEvent struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}

// ErrorEvent carries a fatal pipeline error.
type ErrorEvent struct {
	Message string `json:"message"`
}
