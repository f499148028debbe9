package httpapi

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBody_BinaryContentType(t *testing.T) {
	body := "\x00\x01\x02"

	for _, contentType := range []string{
		"image/png",
		"video/mp4",
		"audio/mpeg",
		"application/octet-stream",
		"IMAGE/PNG",
	} {
		result := sanitizeBody(contentType, body)
		assert.Equal(t, fmt.Sprintf("[Binary content: %s, size: 3 bytes]", contentType), result)
	}
}

func TestSanitizeBody_TextContentTypePassesThrough(t *testing.T) {
	assert.Equal(t, "hello", sanitizeBody("text/plain", "hello"))
	assert.Equal(t, `{"a":1}`, sanitizeBody("application/json", `{"a":1}`))
}

func TestLooksBinary_TenPercentBoundary(t *testing.T) {
	// 100 chars with exactly 10 control characters: 10% is not strictly
	// above the threshold, so the body is still text.
	atThreshold := strings.Repeat("\x01", 10) + strings.Repeat("a", 90)
	assert.False(t, looksBinary(atThreshold))

	// One more control character tips it over.
	overThreshold := strings.Repeat("\x01", 11) + strings.Repeat("a", 89)
	assert.True(t, looksBinary(overThreshold))
}

func TestLooksBinary_WhitespaceControlsIgnored(t *testing.T) {
	body := strings.Repeat("\n\r\t", 100)

	assert.False(t, looksBinary(body))
}

func TestLooksBinary_SamplesOnlyLeadingChars(t *testing.T) {
	// Control characters beyond the first 1000 never count.
	body := strings.Repeat("a", binarySampleSize) + strings.Repeat("\x01", 500)

	assert.False(t, looksBinary(body))
}

func TestLooksBinary_EmptyBody(t *testing.T) {
	assert.False(t, looksBinary(""))
}

func TestSanitizeBody_TruncationBoundary(t *testing.T) {
	exact := strings.Repeat("a", maxTextBodyChars)
	assert.Equal(t, exact, sanitizeBody("text/plain", exact))

	over := strings.Repeat("a", maxTextBodyChars+1)
	result := sanitizeBody("text/plain", over)

	assert.True(t, strings.HasPrefix(result, exact))
	assert.True(t, strings.HasSuffix(result,
		fmt.Sprintf("... [Truncated, total size: %d bytes]", maxTextBodyChars+1)))
}

func TestSanitizeBody_MostlyControlCharacters(t *testing.T) {
	body := strings.Repeat("\x00", 200)

	assert.Equal(t, "[Binary content detected, size: 200 bytes]", sanitizeBody("text/plain", body))
}
