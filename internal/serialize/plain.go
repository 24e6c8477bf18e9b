package serialize

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/Ppaja/filemerge/internal/tree"
	"github.com/Ppaja/filemerge/internal/utils"
)

const (
	plainTreeHeader        = "File Tree:\n"
	plainContentHeader     = "\nMerged Files:\n"
	plainExcludedSuffix    = " (not included)"
	plainUnreadableMarker  = "Could not read file\n"
	treeConnectorMiddle    = "├── "
	treeConnectorLast      = "└── "
	treePrefixContinuation = "│   "
	treePrefixSpacer       = "    "
)

// WriteDiagram renders only the box-drawing tree diagram to destination,
// without the content sections. Selection annotations follow the plain layout.
func WriteDiagram(rootNode *tree.Node, destination io.Writer) error {
	emitter := &reportEmitter{
		writer: &countingWriter{destination: destination},
		report: &Report{Format: FormatPlain},
	}
	return emitter.writePlainDiagram(rootNode, "")
}

// writePlain renders the plain-text layout: a box-drawing diagram of the
// root's children, one blank line, then the raw content of every included
// file prefixed by its name and relative path.
func (emitter *reportEmitter) writePlain(ctx context.Context, rootNode *tree.Node) error {
	if headerError := emitter.print(plainTreeHeader); headerError != nil {
		return headerError
	}
	if diagramError := emitter.writePlainDiagram(rootNode, ""); diagramError != nil {
		return diagramError
	}
	if headerError := emitter.print(plainContentHeader); headerError != nil {
		return headerError
	}
	for _, fileNode := range rootNode.SelectedFiles() {
		if boundaryError := emitter.fileBoundary(ctx); boundaryError != nil {
			return boundaryError
		}
		if sectionError := emitter.printf("%s:\n%s\n", fileNode.Name, fileNode.RelativePath); sectionError != nil {
			return sectionError
		}
		if contentError := emitter.streamPlainContent(fileNode); contentError != nil {
			return contentError
		}
	}
	return emitter.fileBoundary(ctx)
}

// writePlainDiagram emits one line per visible node. Directories whose whole
// subtree is excluded collapse to a single annotated line; their descendants
// are not listed.
func (emitter *reportEmitter) writePlainDiagram(parentNode *tree.Node, linePrefix string) error {
	for childIndex, childNode := range parentNode.Children {
		isLastChild := childIndex == len(parentNode.Children)-1
		connector := treeConnectorMiddle
		if isLastChild {
			connector = treeConnectorLast
		}

		if childNode.IsDir() {
			if childNode.Selection == tree.Unselected {
				if lineError := emitter.printf("%s%s%s%s\n", linePrefix, connector, childNode.Name, plainExcludedSuffix); lineError != nil {
					return lineError
				}
				continue
			}
			if lineError := emitter.printf("%s%s%s\n", linePrefix, connector, childNode.Name); lineError != nil {
				return lineError
			}
			childPrefix := linePrefix + treePrefixContinuation
			if isLastChild {
				childPrefix = linePrefix + treePrefixSpacer
			}
			if descendError := emitter.writePlainDiagram(childNode, childPrefix); descendError != nil {
				return descendError
			}
			continue
		}

		excludedSuffix := plainExcludedSuffix
		if includedFile(childNode) {
			excludedSuffix = ""
		}
		if lineError := emitter.printf("%s%s%s%s\n", linePrefix, connector, childNode.Name, excludedSuffix); lineError != nil {
			return lineError
		}
	}
	return nil
}

// streamPlainContent copies one file's content to the report, terminated by
// a single newline so sections stay separated. Unreadable and binary files
// emit the read-failure marker instead of content.
func (emitter *reportEmitter) streamPlainContent(fileNode *tree.Node) error {
	fileHandle, openError := os.Open(fileNode.Path)
	if openError != nil {
		emitter.recordOmission(fileNode, openError)
		return emitter.print(plainUnreadableMarker)
	}
	defer func() {
		_ = fileHandle.Close()
	}()

	sample, isBinary, sniffError := utils.SniffBinary(fileHandle)
	if sniffError != nil {
		emitter.recordOmission(fileNode, sniffError)
		return emitter.print(plainUnreadableMarker)
	}
	if isBinary {
		emitter.report.FilesOmitted++
		return emitter.print(plainUnreadableMarker)
	}

	emitter.report.FilesMerged++
	if _, copyError := emitter.streamContent(sample, fileHandle); copyError != nil {
		return copyError
	}
	return emitter.print("\n")
}

// recordOmission notes a file whose content could not be read.
func (emitter *reportEmitter) recordOmission(fileNode *tree.Node, readError error) {
	emitter.report.FilesOmitted++
	emitter.report.Warnings = append(emitter.report.Warnings,
		formatUnreadableWarning(fileNode.RelativePath, readError))
}

// lastByteWriter remembers the final byte passed through, so callers can
// tell whether streamed content ended with a newline.
type lastByteWriter struct {
	destination io.Writer
	lastByte    byte
}

func (writer *lastByteWriter) Write(data []byte) (int, error) {
	written, writeError := writer.destination.Write(data)
	if written > 0 {
		writer.lastByte = data[written-1]
	}
	return written, writeError
}

// streamContent writes the sniffed sample followed by the rest of the file,
// teeing the text through the token counter when one is configured. Memory
// use stays bounded by the file being streamed, never by the whole report.
// The returned byte is the last byte written, zero for empty content.
func (emitter *reportEmitter) streamContent(sample []byte, remainder io.Reader) (byte, error) {
	tailWriter := &lastByteWriter{destination: emitter.writer}
	if emitter.options.TokenCounter == nil {
		if _, sampleError := tailWriter.Write(sample); sampleError != nil {
			return tailWriter.lastByte, sampleError
		}
		_, copyError := io.Copy(tailWriter, remainder)
		return tailWriter.lastByte, copyError
	}

	var contentBuilder strings.Builder
	teeDestination := io.MultiWriter(tailWriter, &contentBuilder)
	if _, sampleError := teeDestination.Write(sample); sampleError != nil {
		return tailWriter.lastByte, sampleError
	}
	if _, copyError := io.Copy(teeDestination, remainder); copyError != nil {
		return tailWriter.lastByte, copyError
	}
	emitter.countTokens(contentBuilder.String())
	return tailWriter.lastByte, nil
}
