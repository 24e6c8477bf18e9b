package utils_test

import (
	"reflect"
	"testing"

	"github.com/Ppaja/filemerge/internal/utils"
)

func TestSplitPathComponents(t *testing.T) {
	result := utils.SplitPathComponents("js/subjs/sub.js")
	expected := []string{"js", "subjs", "sub.js"}
	if !reflect.DeepEqual(result, expected) {
		t.Fatalf("unexpected components: got %v want %v", result, expected)
	}
	windowsResult := utils.SplitPathComponents(`js\subjs\sub.js`)
	if !reflect.DeepEqual(windowsResult, expected) {
		t.Fatalf("backslash path split differs: got %v want %v", windowsResult, expected)
	}
}

func TestDeduplicatePatterns(t *testing.T) {
	input := []string{"*.log", "node_modules", "*.log", "dist", "node_modules"}
	expected := []string{"*.log", "node_modules", "dist"}
	result := utils.DeduplicatePatterns(input)
	if !reflect.DeepEqual(result, expected) {
		t.Fatalf("unexpected deduplication: got %v want %v", result, expected)
	}
}

func TestContainsString(t *testing.T) {
	values := []string{"alpha", "beta"}
	if !utils.ContainsString(values, "beta") {
		t.Fatal("expected beta to be found")
	}
	if utils.ContainsString(values, "gamma") {
		t.Fatal("did not expect gamma to be found")
	}
}
