package segmenter

import (
	"fmt"
	"regexp"
	"strings"
)

// roleMarker matches conversation role markers at line starts,
// case-insensitively, optionally followed by inline content on the
// same line. The second alternation covers the Greek role names used
// by localized conversation exports.
var roleMarker = regexp.MustCompile(`(?mi)^(USER|ASSISTANT|SYSTEM|TOOL|UNKNOWN|ΧΡΗΣΤΗΣ|ΒΟΗΘΟΣ|ΣΥΣΤΗΜΑ|ΕΡΓΑΛΕΙΟ|ΑΓΝΩΣΤΟ):`)

// greekRoles maps localized role names to their canonical form.
// Keys are fully folded: lowercase, accents stripped, final sigma
// normalized to σ (see canonicalRole).
var greekRoles = map[string]string{
	"χρηστησ":  "user",
	"βοηθοσ":   "assistant",
	"συστημα":  "system",
	"εργαλειο": "tool",
	"αγνωστο":  "unknown",
}

// roleSpan is one role-marked block of the text.
// blockStart is the offset of the marker itself so that a span always
// covers its own header line; blockEnd is the start of the next marker
// (or the end of the text).
type roleSpan struct {
	role       string
	blockStart int
	blockEnd   int
}

// SegmentQA splits conversational text into Q/A chunks. Consecutive
// user→assistant spans merge into one chunk covering both blocks; any
// unpaired span becomes its own single-role chunk. When fewer than two
// role markers are present the text has no conversational structure and
// segmentation falls through to SegmentParagraphs.
func SegmentQA(text string, paragraphMaxChars int) []Chunk {
	matches := roleMarker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 2 {
		return SegmentParagraphs(text, paragraphMaxChars)
	}

	spans := make([]roleSpan, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		spans = append(spans, roleSpan{
			role:       canonicalRole(text[m[2]:m[3]]),
			blockStart: m[0],
			blockEnd:   end,
		})
	}

	chunks := make([]Chunk, 0, len(spans))
	i := 0
	for i < len(spans) {
		s := spans[i]
		if s.role == "user" && i+1 < len(spans) && spans[i+1].role == "assistant" {
			start, end := s.blockStart, spans[i+1].blockEnd
			chunks = append(chunks, Chunk{
				Title:   fmt.Sprintf("Q/A #%d", len(chunks)+1),
				Content: slice(text, start, end),
				Start:   start,
				End:     end,
			})
			i += 2
			continue
		}
		chunks = append(chunks, Chunk{
			Title:   fmt.Sprintf("Block #%d (%s)", len(chunks)+1, s.role),
			Content: slice(text, s.blockStart, s.blockEnd),
			Start:   s.blockStart,
			End:     s.blockEnd,
		})
		i++
	}

	return chunks
}

// canonicalRole lowercases a matched role name and resolves Greek aliases.
func canonicalRole(name string) string {
	lower := strings.ToLower(name)
	if canon, ok := greekRoles[stripAccents(lower)]; ok {
		return canon
	}
	return lower
}

// stripAccents removes the tonos marks that Greek role names may carry
// (ΧΡΉΣΤΗΣ and ΧΡΗΣΤΗΣ should both match).
func stripAccents(s string) string {
	replacer := strings.NewReplacer(
		"ά", "α", "έ", "ε", "ή", "η", "ί", "ι",
		"ό", "ο", "ύ", "υ", "ώ", "ω", "ς", "σ",
	)
	return replacer.Replace(s)
}
