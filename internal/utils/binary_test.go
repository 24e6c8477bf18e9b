package utils_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Ppaja/filemerge/internal/utils"
)

func TestIsBinary(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected bool
	}{
		{name: "empty is text", data: nil, expected: false},
		{name: "plain ascii is text", data: []byte("hello world\n"), expected: false},
		{name: "utf8 is text", data: []byte("héllo wörld"), expected: false},
		{name: "nul byte is binary", data: []byte{'a', 0x00, 'b'}, expected: true},
		{name: "invalid utf8 is binary", data: []byte{0xff, 0xfe, 0xfd}, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := utils.IsBinary(testCase.data); result != testCase.expected {
				t.Fatalf("IsBinary(%v) = %v, want %v", testCase.data, result, testCase.expected)
			}
		})
	}
}

func TestSniffBinaryReturnsConsumedBytes(t *testing.T) {
	content := "line one\nline two\n"
	sample, isBinary, sniffError := utils.SniffBinary(strings.NewReader(content))
	if sniffError != nil {
		t.Fatalf("SniffBinary failed: %v", sniffError)
	}
	if isBinary {
		t.Fatal("text content classified as binary")
	}
	if string(sample) != content {
		t.Fatalf("sample does not round-trip: got %q", string(sample))
	}
}

func TestSniffBinaryDetectsBinaryPrefix(t *testing.T) {
	data := append([]byte{0x00, 0x01, 0x02}, bytes.Repeat([]byte{'x'}, 64)...)
	_, isBinary, sniffError := utils.SniffBinary(bytes.NewReader(data))
	if sniffError != nil {
		t.Fatalf("SniffBinary failed: %v", sniffError)
	}
	if !isBinary {
		t.Fatal("binary content classified as text")
	}
}
