package utils

import (
	"net/http"
)

// UnknownMimeType is returned when no content is available to classify.
const UnknownMimeType = ""

// DetectMimeType returns the MIME type of the given content sample using
// http.DetectContentType. Callers that already sniffed a file pass the sample
// here instead of having the file re-opened and re-read.
func DetectMimeType(sample []byte) string {
	if len(sample) == 0 {
		return UnknownMimeType
	}
	return http.DetectContentType(sample)
}
