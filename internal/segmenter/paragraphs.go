package segmenter

import "fmt"

// DefaultMaxChars is the default character budget for paragraph chunks.
const DefaultMaxChars = 2500

// paragraphSpan is one trimmed paragraph of the text.
type paragraphSpan struct {
	start int
	end   int
}

// SegmentParagraphs splits text on blank-line boundaries and greedily
// groups adjacent paragraphs into chunks bounded by maxChars. A chunk's
// offsets are the trimmed boundaries of its first and last paragraph, so
// Content is always an exact trimmed slice of the input, never a re-joined
// copy. A paragraph that alone exceeds the budget is emitted as a single
// oversized chunk; the algorithm never splits inside a paragraph.
// Empty or whitespace-only input yields an empty list.
func SegmentParagraphs(text string, maxChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	paras := splitParagraphs(text)
	if len(paras) == 0 {
		return []Chunk{}
	}

	var chunks []Chunk
	flush := func(start, end int) {
		chunks = append(chunks, Chunk{
			Title:   fmt.Sprintf("Chunk #%d", len(chunks)+1),
			Content: slice(text, start, end),
			Start:   start,
			End:     end,
		})
	}

	// Greedy grouping. joined tracks the length of the chunk as if its
	// paragraphs were joined with "\n\n", matching the budget check the
	// chunk size was tuned for.
	cur := paras[0]
	joined := cur.end - cur.start
	for _, p := range paras[1:] {
		pLen := p.end - p.start
		if joined+pLen+2 <= maxChars {
			cur.end = p.end
			joined += pLen + 2
			continue
		}
		flush(cur.start, cur.end)
		cur = p
		joined = pLen
	}
	flush(cur.start, cur.end)

	return chunks
}

// splitParagraphs finds the trimmed spans of all non-empty paragraphs.
// Paragraph boundaries are runs of one or more blank (or whitespace-only)
// lines.
func splitParagraphs(text string) []paragraphSpan {
	var paras []paragraphSpan

	lineStart := 0
	paraStart := -1
	flush := func(rawEnd int) {
		if paraStart < 0 {
			return
		}
		start, end := trimSpan(text, paraStart, rawEnd)
		if end > start {
			paras = append(paras, paragraphSpan{start: start, end: end})
		}
		paraStart = -1
	}

	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '\n' {
			continue
		}
		blank := isBlankLine(text[lineStart:i])
		if blank {
			flush(lineStart)
		} else if paraStart < 0 {
			paraStart = lineStart
		}
		lineStart = i + 1
	}
	flush(len(text))

	return paras
}

// isBlankLine reports whether a line contains only whitespace.
func isBlankLine(line string) bool {
	for i := 0; i < len(line); i++ {
		if !isSpace(line[i]) {
			return false
		}
	}
	return true
}
