// Package segmenter derives offset-exact chunks from document text.
//
// Both algorithms are pure functions of their input: the same text always
// yields byte-identical output, and every chunk carries the byte range of
// the original text it was derived from. No chunk content is ever built
// from a re-joined copy; Content is always a trimmed slice of the input,
// so callers can verify Content against text[Start:End] at any time.
package segmenter

import "strings"

// Chunk is one derived slice of a document's text.
// Start/End are byte offsets into the input text and
// Content == strings.TrimSpace(text[Start:End]).
type Chunk struct {
	Title   string
	Content string
	Start   int
	End     int
}

// trimSpan narrows [start, end) to exclude leading and trailing whitespace.
// Returns the narrowed bounds; for all-whitespace input start == end.
func trimSpan(text string, start, end int) (int, int) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return start, end
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// slice returns the trimmed content for a span.
func slice(text string, start, end int) string {
	return strings.TrimSpace(text[start:end])
}
