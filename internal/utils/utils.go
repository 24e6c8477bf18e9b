// Package utils contains general helper functions used across the file merger.
package utils

import (
	"strings"
)

// SplitPathComponents splits a forward-slash relative path into its components.
// Backslashes are normalized first so Windows-produced paths split identically.
func SplitPathComponents(relativePath string) []string {
	normalized := strings.ReplaceAll(relativePath, "\\", "/")
	return strings.Split(normalized, "/")
}

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}
