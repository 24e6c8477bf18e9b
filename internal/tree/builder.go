package tree

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Ppaja/filemerge/internal/matcher"
)

const (
	// errorRootMissingFormat reports a root path that does not exist.
	errorRootMissingFormat = "root path %s does not exist"
	// errorRootStatFormat reports a failure to stat the root path.
	errorRootStatFormat = "stat root path %s: %w"
	// errorRootNotDirectoryFormat reports a root path that is not a directory.
	errorRootNotDirectoryFormat = "root path %s is not a directory"
	// errorAbsolutePathFormat reports a failure to resolve the root path.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"

	// warningUnreadableFormat records an entry the scan could not read.
	warningUnreadableFormat = "unreadable entry %s: %v"
	// warningCycleFormat records a symbolic-link cycle whose branch was truncated.
	warningCycleFormat = "symbolic link cycle at %s: branch truncated"
)

// BuildOptions configures a single scan.
type BuildOptions struct {
	// MaxDepth limits how many directory levels below the root are entered.
	// Zero means unlimited. Directories at the limit still appear, childless.
	MaxDepth int
	// Progress, when set, receives the running count of scanned entries at
	// every directory boundary.
	Progress func(entriesScanned int)
}

// Build scans rootPath and produces a fully initialized selection tree.
//
// The traversal is iterative over an explicit work stack. Visited directory
// identities (symlink-resolved canonical paths) break symbolic-link cycles:
// a cycling branch is truncated with a warning instead of failing the scan.
// Unreadable entries become ignored, unreadable leaves. Only a missing or
// non-directory root fails the build; every other problem is absorbed into
// node state and returned as a warning alongside the tree.
//
// Cancellation is cooperative, checked at each directory boundary. A
// cancelled build returns the context error and no tree.
func Build(ctx context.Context, rootPath string, ignoreMatcher *matcher.Matcher, options BuildOptions) (*Node, []string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	rootInfo, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		if os.IsNotExist(rootStatError) {
			return nil, nil, fmt.Errorf(errorRootMissingFormat, rootPath)
		}
		return nil, nil, fmt.Errorf(errorRootStatFormat, rootPath, rootStatError)
	}
	if !rootInfo.IsDir() {
		return nil, nil, fmt.Errorf(errorRootNotDirectoryFormat, rootPath)
	}

	rootNode := &Node{
		Path:         absoluteRootPath,
		RelativePath: ".",
		Name:         filepath.Base(absoluteRootPath),
		Kind:         KindDirectory,
	}

	visitedDirectories := map[string]struct{}{}
	if canonicalRoot, canonicalError := filepath.EvalSymlinks(absoluteRootPath); canonicalError == nil {
		visitedDirectories[canonicalRoot] = struct{}{}
	}

	var warnings []string
	entriesScanned := 0

	type workItem struct {
		node  *Node
		depth int
	}
	stack := []workItem{{node: rootNode, depth: 0}}

	for len(stack) > 0 {
		if cancellationError := ctx.Err(); cancellationError != nil {
			return nil, nil, cancellationError
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		directoryEntries, readDirectoryError := os.ReadDir(current.node.Path)
		if readDirectoryError != nil {
			current.node.Ignored = true
			current.node.Unreadable = true
			warnings = append(warnings, fmt.Sprintf(warningUnreadableFormat, current.node.RelativePath, readDirectoryError))
			continue
		}

		children := make([]*Node, 0, len(directoryEntries))
		for _, directoryEntry := range directoryEntries {
			childPath := filepath.Join(current.node.Path, directoryEntry.Name())
			childRelativePath := joinRelative(current.node.RelativePath, directoryEntry.Name())
			entriesScanned++

			childNode, descend := classifyEntry(directoryEntry, childPath, childRelativePath, ignoreMatcher, visitedDirectories, &warnings)
			children = append(children, childNode)

			if descend && withinDepth(options.MaxDepth, current.depth+1) {
				stack = append(stack, workItem{node: childNode, depth: current.depth + 1})
			}
		}
		current.node.attachChildren(children)

		if options.Progress != nil {
			options.Progress(entriesScanned)
		}
	}

	initializeSelection(rootNode)
	return rootNode, warnings, nil
}

// joinRelative appends a name to a forward-slash relative path.
func joinRelative(parentRelative string, name string) string {
	if parentRelative == "." || parentRelative == "" {
		return name
	}
	return parentRelative + "/" + name
}

// withinDepth reports whether a directory at the given depth may be entered.
func withinDepth(maxDepth int, depth int) bool {
	return maxDepth <= 0 || depth < maxDepth
}

// classifyEntry builds the node for one directory entry and reports whether
// the traversal should descend into it. Symlinks are resolved so a link to a
// directory is walked exactly once; a link back into a visited directory is
// truncated. Entries that cannot be inspected become ignored, unreadable
// leaves so the scan never aborts mid-tree.
func classifyEntry(
	directoryEntry fs.DirEntry,
	childPath string,
	childRelativePath string,
	ignoreMatcher *matcher.Matcher,
	visitedDirectories map[string]struct{},
	warnings *[]string,
) (*Node, bool) {
	childNode := &Node{
		Path:         childPath,
		RelativePath: childRelativePath,
		Name:         directoryEntry.Name(),
	}

	isSymlink := directoryEntry.Type()&fs.ModeSymlink != 0
	isDirectory := directoryEntry.IsDir()

	if isSymlink {
		targetInfo, targetStatError := os.Stat(childPath)
		if targetStatError != nil {
			childNode.Kind = KindFile
			childNode.Ignored = true
			childNode.Unreadable = true
			*warnings = append(*warnings, fmt.Sprintf(warningUnreadableFormat, childRelativePath, targetStatError))
			return childNode, false
		}
		isDirectory = targetInfo.IsDir()
		if !isDirectory {
			childNode.SizeBytes = targetInfo.Size()
		}
	}

	if isDirectory {
		childNode.Kind = KindDirectory
		childNode.Ignored = ignoreMatcher.IsIgnored(childRelativePath, true)
		if childNode.Ignored {
			// Ignored directories stay in the tree for display but the scan
			// does not enter them; their descendants are excluded wholesale.
			return childNode, false
		}
		canonicalPath, canonicalError := filepath.EvalSymlinks(childPath)
		if canonicalError != nil {
			childNode.Ignored = true
			childNode.Unreadable = true
			*warnings = append(*warnings, fmt.Sprintf(warningUnreadableFormat, childRelativePath, canonicalError))
			return childNode, false
		}
		if _, alreadyVisited := visitedDirectories[canonicalPath]; alreadyVisited {
			childNode.Ignored = true
			*warnings = append(*warnings, fmt.Sprintf(warningCycleFormat, childRelativePath))
			return childNode, false
		}
		visitedDirectories[canonicalPath] = struct{}{}
		return childNode, true
	}

	childNode.Kind = KindFile
	childNode.Ignored = ignoreMatcher.IsIgnored(childRelativePath, false)
	if !isSymlink {
		entryInfo, entryInfoError := directoryEntry.Info()
		if entryInfoError != nil {
			childNode.Ignored = true
			childNode.Unreadable = true
			*warnings = append(*warnings, fmt.Sprintf(warningUnreadableFormat, childRelativePath, entryInfoError))
			return childNode, false
		}
		childNode.SizeBytes = entryInfo.Size()
	}
	return childNode, false
}
