package serialize

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/Ppaja/filemerge/internal/tree"
	"github.com/Ppaja/filemerge/internal/utils"
)

const (
	markdownTitle             = "# Merged Files Report\n\n"
	markdownGeneratedFormat   = "- Generated: %s\n"
	markdownSourceFormat      = "- Source directory: %s\n\n"
	markdownTreeHeader        = "## File Tree\n\n"
	markdownContentHeader     = "## Merged Files\n\n"
	markdownFileHeadingFormat = "### %s\n\n"
	markdownBinaryFormat      = "_Binary content omitted (%s)._\n\n"
	markdownUnreadableFormat  = "_Content could not be read._\n\n"
	markdownFenceOpenFormat   = "```%s\n"
	markdownFenceClose        = "```\n\n"
	markdownIncludedMarker    = "✓"
	markdownExcludedMarker    = "✗"
	markdownTreeIndent        = "  "
)

// writeMarkdown renders the structured layout: a header block, the full tree
// annotated with inclusion markers and file sizes, then one fenced section
// per included file.
func (emitter *reportEmitter) writeMarkdown(ctx context.Context, rootNode *tree.Node) error {
	generatedAt := emitter.options.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	if headerError := emitter.print(markdownTitle); headerError != nil {
		return headerError
	}
	if headerError := emitter.printf(markdownGeneratedFormat, utils.FormatTimestamp(generatedAt)); headerError != nil {
		return headerError
	}
	if headerError := emitter.printf(markdownSourceFormat, rootNode.Path); headerError != nil {
		return headerError
	}

	if headerError := emitter.print(markdownTreeHeader); headerError != nil {
		return headerError
	}
	if fenceError := emitter.printf(markdownFenceOpenFormat, ""); fenceError != nil {
		return fenceError
	}
	if diagramError := emitter.writeMarkdownDiagram(rootNode, 0); diagramError != nil {
		return diagramError
	}
	if fenceError := emitter.print(markdownFenceClose); fenceError != nil {
		return fenceError
	}

	if headerError := emitter.print(markdownContentHeader); headerError != nil {
		return headerError
	}
	for _, fileNode := range rootNode.SelectedFiles() {
		if boundaryError := emitter.fileBoundary(ctx); boundaryError != nil {
			return boundaryError
		}
		if sectionError := emitter.writeMarkdownSection(fileNode); sectionError != nil {
			return sectionError
		}
	}
	return emitter.fileBoundary(ctx)
}

// writeMarkdownDiagram lists every node, unlike the plain diagram: excluded
// branches stay expanded so the report documents what was left out.
func (emitter *reportEmitter) writeMarkdownDiagram(parentNode *tree.Node, depth int) error {
	for _, childNode := range parentNode.Children {
		marker := markdownExcludedMarker
		if childNode.Selection != tree.Unselected && !childNode.Ignored {
			marker = markdownIncludedMarker
		}

		indentation := ""
		for level := 0; level < depth; level++ {
			indentation += markdownTreeIndent
		}

		if childNode.IsDir() {
			if lineError := emitter.printf("%s%s %s/\n", indentation, marker, childNode.Name); lineError != nil {
				return lineError
			}
			if descendError := emitter.writeMarkdownDiagram(childNode, depth+1); descendError != nil {
				return descendError
			}
			continue
		}
		if lineError := emitter.printf("%s%s %s (%s)\n", indentation, marker, childNode.Name, utils.FormatSizeKB(childNode.SizeBytes)); lineError != nil {
			return lineError
		}
	}
	return nil
}

// writeMarkdownSection emits one included file as a heading plus a fenced
// content block tagged with the language derived from the file extension.
func (emitter *reportEmitter) writeMarkdownSection(fileNode *tree.Node) error {
	if headingError := emitter.printf(markdownFileHeadingFormat, fileNode.RelativePath); headingError != nil {
		return headingError
	}

	fileHandle, openError := os.Open(fileNode.Path)
	if openError != nil {
		emitter.recordOmission(fileNode, openError)
		return emitter.print(markdownUnreadableFormat)
	}
	defer func() {
		_ = fileHandle.Close()
	}()

	sample, isBinary, sniffError := utils.SniffBinary(fileHandle)
	if sniffError != nil {
		emitter.recordOmission(fileNode, sniffError)
		return emitter.print(markdownUnreadableFormat)
	}
	if isBinary {
		emitter.report.FilesOmitted++
		return emitter.printf(markdownBinaryFormat, utils.DetectMimeType(sample))
	}

	emitter.report.FilesMerged++
	if fenceError := emitter.printf(markdownFenceOpenFormat, languageForFile(fileNode.Name)); fenceError != nil {
		return fenceError
	}
	lastContentByte, copyError := emitter.streamContent(sample, fileHandle)
	if copyError != nil {
		return copyError
	}
	// Keep the closing fence on its own line.
	if lastContentByte != '\n' {
		if terminatorError := emitter.print("\n"); terminatorError != nil {
			return terminatorError
		}
	}
	return emitter.print(markdownFenceClose)
}

// languageForFile maps a file extension to a fenced-block language tag.
func languageForFile(fileName string) string {
	switch filepath.Ext(fileName) {
	case ".go":
		return "go"
	case ".js":
		return "javascript"
	case ".py":
		return "python"
	case ".rb":
		return "ruby"
	case ".java":
		return "java"
	case ".c", ".cpp", ".h", ".hpp":
		return "cpp"
	case ".cs":
		return "csharp"
	case ".php":
		return "php"
	case ".ts":
		return "typescript"
	case ".html":
		return "html"
	case ".css":
		return "css"
	case ".md":
		return "markdown"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".sh", ".bash":
		return "bash"
	case ".sql":
		return "sql"
	default:
		return ""
	}
}
