package tokenizer_test

import (
	"testing"

	"github.com/Ppaja/filemerge/internal/tokenizer"
)

func TestNewCounterModelSelection(testInstance *testing.T) {
	testCases := []struct {
		name          string
		model         string
		expectedLabel string
	}{
		{name: "default model", model: "", expectedLabel: "gpt-4o"},
		{name: "explicit openai model", model: "gpt-4o", expectedLabel: "gpt-4o"},
		{name: "unknown model falls back", model: "mystery-model-9", expectedLabel: "cl100k_base"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			counter, resolvedLabel, counterError := tokenizer.NewCounter(testCase.model)
			if counterError != nil {
				subTest.Fatalf("creating counter: %v", counterError)
			}
			if resolvedLabel != testCase.expectedLabel {
				subTest.Errorf("resolved label %s, expected %s", resolvedLabel, testCase.expectedLabel)
			}
			if counter.Name() != testCase.expectedLabel {
				subTest.Errorf("counter name %s, expected %s", counter.Name(), testCase.expectedLabel)
			}
		})
	}
}

func TestCountStringProducesPositiveCounts(testInstance *testing.T) {
	counter, _, counterError := tokenizer.NewCounter("gpt-4o")
	if counterError != nil {
		testInstance.Fatalf("creating counter: %v", counterError)
	}

	emptyCount, emptyError := counter.CountString("")
	if emptyError != nil {
		testInstance.Fatalf("counting empty string: %v", emptyError)
	}
	if emptyCount != 0 {
		testInstance.Errorf("empty string counted %d tokens, expected 0", emptyCount)
	}

	textCount, textError := counter.CountString("package main\n\nfunc main() {}\n")
	if textError != nil {
		testInstance.Fatalf("counting text: %v", textError)
	}
	if textCount <= 0 {
		testInstance.Errorf("text counted %d tokens, expected a positive count", textCount)
	}
}
