package utils_test

import (
	"testing"
	"time"

	"github.com/Ppaja/filemerge/internal/utils"
)

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "negative clamps to zero", bytes: -5, expected: "0b"},
		{name: "bytes stay integral", bytes: 512, expected: "512b"},
		{name: "small kilobytes keep one decimal", bytes: 1536, expected: "1.5kb"},
		{name: "whole kilobytes drop the decimal", bytes: 2048, expected: "2kb"},
		{name: "large values round", bytes: 10 * 1024 * 1024, expected: "10mb"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := utils.FormatFileSize(testCase.bytes)
			if result != testCase.expected {
				t.Fatalf("FormatFileSize(%d) = %q, want %q", testCase.bytes, result, testCase.expected)
			}
		})
	}
}

func TestFormatSizeKB(t *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "zero", bytes: 0, expected: "0.0 KB"},
		{name: "negative clamps to zero", bytes: -1, expected: "0.0 KB"},
		{name: "sub-kilobyte", bytes: 100, expected: "0.1 KB"},
		{name: "exact kilobyte", bytes: 1024, expected: "1.0 KB"},
		{name: "megabytes stay in kilobytes", bytes: 2 * 1024 * 1024, expected: "2048.0 KB"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := utils.FormatSizeKB(testCase.bytes)
			if result != testCase.expected {
				t.Fatalf("FormatSizeKB(%d) = %q, want %q", testCase.bytes, result, testCase.expected)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	if result := utils.FormatTimestamp(time.Time{}); result != "" {
		t.Fatalf("expected empty string for zero time, got %q", result)
	}
	value := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.Local)
	if result := utils.FormatTimestamp(value); result != "2024-03-05 14:30" {
		t.Fatalf("unexpected timestamp: %q", result)
	}
}
