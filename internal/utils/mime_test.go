package utils_test

import (
	"strings"
	"testing"

	"github.com/Ppaja/filemerge/internal/utils"
)

func TestDetectMimeType(t *testing.T) {
	textSample := []byte("plain text content")
	mimeType := utils.DetectMimeType(textSample)
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type for text sample: %q", mimeType)
	}

	binarySample := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0}
	if result := utils.DetectMimeType(binarySample); !strings.HasPrefix(result, "image/png") {
		t.Fatalf("unexpected mime type for png sample: %q", result)
	}

	if result := utils.DetectMimeType(nil); result != utils.UnknownMimeType {
		t.Fatalf("expected unknown mime type for empty sample, got %q", result)
	}
}
