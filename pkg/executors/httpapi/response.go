package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stageflow/stageflow/pkg/models"
)

const (
	// binarySampleSize is how many leading characters are inspected for
	// control characters.
	binarySampleSize = 1000
	// maxTextBodyChars caps how much textual body is kept.
	maxTextBodyChars = 10240
)

var binaryContentTypePrefixes = []string{"image/", "video/", "audio/"}

// processResponse reads the response body and applies the three-tier
// classification: declared binary content types get a placeholder, bodies
// that sample as mostly control characters get a placeholder, and oversized
// text is truncated with an explicit marker.
func processResponse(resp *http.Response) (*models.HTTPResult, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")

	result := &models.HTTPResult{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Headers:     flattenHeaders(resp.Header),
		Body:        sanitizeBody(contentType, string(raw)),
	}

	return result, nil
}

func sanitizeBody(contentType, body string) string {
	if isBinaryContentType(contentType) {
		return fmt.Sprintf("[Binary content: %s, size: %d bytes]", contentType, len(body))
	}

	if looksBinary(body) {
		return fmt.Sprintf("[Binary content detected, size: %d bytes]", len(body))
	}

	chars := []rune(body)
	if len(chars) > maxTextBodyChars {
		return string(chars[:maxTextBodyChars]) +
			fmt.Sprintf("... [Truncated, total size: %d bytes]", len(body))
	}

	return body
}

func isBinaryContentType(contentType string) bool {
	lowered := strings.ToLower(contentType)

	for _, prefix := range binaryContentTypePrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}

	return strings.Contains(lowered, "octet-stream")
}

// looksBinary samples the first binarySampleSize characters and classifies
// the body as binary when strictly more than 10% of them are control
// characters other than newline, carriage return, and tab.
func looksBinary(body string) bool {
	sampled := 0
	controls := 0

	for _, r := range body {
		if sampled >= binarySampleSize {
			break
		}

		sampled++

		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}

		if r < 0x20 || r == 0x7f {
			controls++
		}
	}

	if sampled == 0 {
		return false
	}

	return controls*10 > sampled
}

func flattenHeaders(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for key := range header {
		flat[key] = header.Get(key)
	}

	return flat
}
