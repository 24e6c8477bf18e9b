package utils

import (
	"io"
	"unicode/utf8"
)

// SniffLength is the maximum number of bytes inspected when detecting binary content.
const SniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
// Content is binary when it is not valid UTF-8 or contains a NUL byte.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// SniffBinary reads up to SniffLength bytes from the reader and reports whether
// the content appears to be binary. The consumed bytes are returned so callers
// streaming the rest of the reader do not lose them.
func SniffBinary(reader io.Reader) ([]byte, bool, error) {
	buffer := make([]byte, SniffLength)
	bytesRead, readError := io.ReadFull(reader, buffer)
	if readError != nil && readError != io.EOF && readError != io.ErrUnexpectedEOF {
		return nil, false, readError
	}
	sample := buffer[:bytesRead]
	return sample, IsBinary(sample), nil
}
