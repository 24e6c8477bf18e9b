// Package matcher decides which relative paths are excluded by ignore patterns.
package matcher

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Ppaja/filemerge/internal/utils"
)

const (
	commentPrefix         = "#"
	extensionPatternMark  = "*."
	pathSegmentSeparator  = "/"
	directoryPatternTrail = "/"
)

// Options configures pattern evaluation.
type Options struct {
	// CaseInsensitive selects case-insensitive matching, the behavior expected
	// on filesystems that do not distinguish case. It is a flag rather than a
	// platform probe so both policies stay testable everywhere.
	CaseInsensitive bool
}

// Matcher evaluates an ordered, immutable pattern list against relative paths.
// Later pattern sources are additive; a path matched by any pattern is ignored.
type Matcher struct {
	patterns        []string
	caseInsensitive bool
}

// New constructs a Matcher from raw pattern lines. Blank lines, comment lines,
// and duplicates are dropped; a trailing slash on a pattern is tolerated and
// stripped. Malformed patterns never cause an error, they simply cannot match.
func New(rawPatterns []string, options Options) *Matcher {
	cleaned := make([]string, 0, len(rawPatterns))
	for _, rawPattern := range rawPatterns {
		trimmedPattern := strings.TrimSpace(rawPattern)
		if trimmedPattern == "" || strings.HasPrefix(trimmedPattern, commentPrefix) {
			continue
		}
		trimmedPattern = strings.ReplaceAll(trimmedPattern, "\\", pathSegmentSeparator)
		trimmedPattern = strings.TrimSuffix(trimmedPattern, directoryPatternTrail)
		if trimmedPattern == "" {
			continue
		}
		cleaned = append(cleaned, trimmedPattern)
	}
	return &Matcher{
		patterns:        utils.DeduplicatePatterns(cleaned),
		caseInsensitive: options.CaseInsensitive,
	}
}

// Patterns returns the cleaned pattern list in evaluation order.
func (matcher *Matcher) Patterns() []string {
	result := make([]string, len(matcher.patterns))
	copy(result, matcher.patterns)
	return result
}

// IsIgnored reports whether the relative path is excluded. A pattern matches
// when it equals any path component exactly, when it matches the full relative
// path with shell-style wildcards, or when an "*.ext" pattern matches the
// path's extension. Descendants of an ignored directory are excluded by the
// tree builder without consulting the matcher again.
func (matcher *Matcher) IsIgnored(relativePath string, isDirectory bool) bool {
	if relativePath == "" || relativePath == "." {
		return false
	}

	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	pathComponents := utils.SplitPathComponents(normalizedPath)
	if matcher.caseInsensitive {
		normalizedPath = strings.ToLower(normalizedPath)
		for componentIndex := range pathComponents {
			pathComponents[componentIndex] = strings.ToLower(pathComponents[componentIndex])
		}
	}

	for _, patternValue := range matcher.patterns {
		normalizedPattern := patternValue
		if matcher.caseInsensitive {
			normalizedPattern = strings.ToLower(normalizedPattern)
		}
		if matchesComponent(normalizedPattern, pathComponents) {
			return true
		}
		if matchesExtension(normalizedPattern, pathComponents[len(pathComponents)-1]) {
			return true
		}
		if matchesFullPath(normalizedPattern, normalizedPath) {
			return true
		}
	}
	return false
}

// matchesComponent reports whether the pattern equals any path component exactly.
func matchesComponent(patternValue string, pathComponents []string) bool {
	if strings.Contains(patternValue, pathSegmentSeparator) {
		return false
	}
	for _, component := range pathComponents {
		if component == patternValue {
			return true
		}
	}
	return false
}

// matchesExtension reports whether a "*.ext" pattern matches the final
// component's extension.
func matchesExtension(patternValue string, finalComponent string) bool {
	if !strings.HasPrefix(patternValue, extensionPatternMark) {
		return false
	}
	suffix := patternValue[1:]
	if strings.ContainsAny(suffix, "*?/") {
		return false
	}
	return strings.HasSuffix(finalComponent, suffix)
}

// matchesFullPath reports whether the pattern matches the entire relative path
// using shell-style wildcards. Invalid patterns cannot match.
func matchesFullPath(patternValue string, normalizedPath string) bool {
	matched, matchError := doublestar.Match(patternValue, normalizedPath)
	if matchError != nil {
		return false
	}
	return matched
}
