// Package session persists a merge setup between runs: the scanned root, the
// selected file paths, the ignore patterns, and the output settings.
package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Ppaja/filemerge/internal/tree"
)

// Session is the on-disk record of one merge setup. Only the relative paths
// of selected files are kept, never the tree itself: loading always re-scans
// the root and re-applies the selection against the fresh tree.
type Session struct {
	RootPath        string   `json:"root_path"`
	SelectedPaths   []string `json:"selected_paths"`
	IgnorePatterns  []string `json:"ignore_patterns,omitempty"`
	OutputFormat    string   `json:"output_format,omitempty"`
	OutputPath      string   `json:"output_path,omitempty"`
	MaxDepth        int      `json:"max_depth,omitempty"`
	CaseInsensitive bool     `json:"case_insensitive,omitempty"`
}

const (
	errorReadSessionFormat   = "reading session file %s: %w"
	errorParseSessionFormat  = "parsing session file %s: %w"
	errorEncodeSessionFormat = "encoding session: %w"
	errorWriteSessionFormat  = "writing session file %s: %w"
)

// CaptureSelection returns the relative paths of every selected file in the
// tree, in deterministic traversal order.
func CaptureSelection(rootNode *tree.Node) []string {
	selectedFiles := rootNode.SelectedFiles()
	selectedPaths := make([]string, 0, len(selectedFiles))
	for _, fileNode := range selectedFiles {
		selectedPaths = append(selectedPaths, fileNode.RelativePath)
	}
	return selectedPaths
}

// ApplySelection replays a saved selection onto a freshly built tree. The
// tree is fully deselected first, then each saved path is selected again.
// Paths that no longer exist in the tree are dropped and returned so callers
// can report them; they never fail the load.
func ApplySelection(rootNode *tree.Node, selectedPaths []string) []string {
	tree.DeselectAll(rootNode)
	var droppedPaths []string
	for _, selectedPath := range selectedPaths {
		fileNode := rootNode.Find(selectedPath)
		if fileNode == nil || fileNode.Kind != tree.KindFile {
			droppedPaths = append(droppedPaths, selectedPath)
			continue
		}
		if _, toggled := tree.Toggle(fileNode, tree.Selected); !toggled {
			droppedPaths = append(droppedPaths, selectedPath)
		}
	}
	return droppedPaths
}

// Load reads and decodes a session file.
func Load(sessionPath string) (Session, error) {
	sessionData, readError := os.ReadFile(sessionPath)
	if readError != nil {
		return Session{}, fmt.Errorf(errorReadSessionFormat, sessionPath, readError)
	}
	var loadedSession Session
	if unmarshalError := json.Unmarshal(sessionData, &loadedSession); unmarshalError != nil {
		return Session{}, fmt.Errorf(errorParseSessionFormat, sessionPath, unmarshalError)
	}
	return loadedSession, nil
}

// Save encodes the session as indented JSON and writes it to sessionPath,
// replacing any previous session file.
func Save(sessionPath string, sessionRecord Session) error {
	sessionData, marshalError := json.MarshalIndent(sessionRecord, "", "  ")
	if marshalError != nil {
		return fmt.Errorf(errorEncodeSessionFormat, marshalError)
	}
	sessionData = append(sessionData, '\n')
	if writeError := os.WriteFile(sessionPath, sessionData, 0o644); writeError != nil {
		return fmt.Errorf(errorWriteSessionFormat, sessionPath, writeError)
	}
	return nil
}
