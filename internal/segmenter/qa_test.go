package segmenter

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegmentQA_SinglePair(t *testing.T) {
	text := "USER:\nHi\nASSISTANT:\nHello"

	chunks := SegmentQA(text, DefaultMaxChars)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}

	c := chunks[0]
	if c.Title != "Q/A #1" {
		t.Errorf("Title = %q, want %q", c.Title, "Q/A #1")
	}
	if c.Start != 0 || c.End != len(text) {
		t.Errorf("span = [%d, %d), want [0, %d)", c.Start, c.End, len(text))
	}
	if c.Content != text {
		t.Errorf("Content = %q, want the full text", c.Content)
	}
}

func TestSegmentQA_PairsAndUnpairedBlocks(t *testing.T) {
	text := "SYSTEM:\nBe helpful.\nUSER:\nQuestion one\nASSISTANT:\nAnswer one\nUSER:\nDangling question"

	chunks := SegmentQA(text, DefaultMaxChars)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	if chunks[0].Title != "Block #1 (system)" {
		t.Errorf("chunks[0].Title = %q, want system block", chunks[0].Title)
	}
	if chunks[1].Title != "Q/A #2" {
		t.Errorf("chunks[1].Title = %q, want Q/A #2", chunks[1].Title)
	}
	if chunks[2].Title != "Block #3 (user)" {
		t.Errorf("chunks[2].Title = %q, want dangling user block", chunks[2].Title)
	}

	// Spans must cover the whole text with no gaps.
	if chunks[0].Start != 0 {
		t.Errorf("first chunk starts at %d, want 0", chunks[0].Start)
	}
	if chunks[2].End != len(text) {
		t.Errorf("last chunk ends at %d, want %d", chunks[2].End, len(text))
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start < chunks[i-1].Start {
			t.Errorf("chunk %d starts before chunk %d", i, i-1)
		}
	}
}

func TestSegmentQA_CaseInsensitiveAndInlineContent(t *testing.T) {
	text := "user: what time is it?\nAssistant: late.\n"

	chunks := SegmentQA(text, DefaultMaxChars)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Title != "Q/A #1" {
		t.Errorf("Title = %q, want Q/A #1", chunks[0].Title)
	}
	if chunks[0].Content != strings.TrimSpace(text) {
		t.Errorf("Content = %q, want trimmed text", chunks[0].Content)
	}
}

func TestSegmentQA_GreekRoleAliases(t *testing.T) {
	text := "ΧΡΗΣΤΗΣ:\nΤι ώρα είναι;\nΒΟΗΘΟΣ:\nΕίναι αργά."

	chunks := SegmentQA(text, DefaultMaxChars)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 merged Q/A", len(chunks))
	}
	if chunks[0].Title != "Q/A #1" {
		t.Errorf("Title = %q, want Q/A #1", chunks[0].Title)
	}
	if chunks[0].Start != 0 || chunks[0].End != len(text) {
		t.Errorf("span = [%d, %d), want full text", chunks[0].Start, chunks[0].End)
	}
}

func TestSegmentQA_MarkerMidLineIgnored(t *testing.T) {
	// "USER:" not at a line start is content, not a marker.
	text := "the USER: did something\nASSISTANT:\nok\nUSER:\nmore"

	chunks := SegmentQA(text, DefaultMaxChars)
	for _, c := range chunks {
		if c.Start == 4 {
			t.Error("mid-line marker was treated as a block start")
		}
	}
}

func TestSegmentQA_FewMarkersDelegatesToParagraphs(t *testing.T) {
	text := "USER:\nonly one marker here\n\nand a second paragraph"

	got := SegmentQA(text, DefaultMaxChars)
	want := SegmentParagraphs(text, DefaultMaxChars)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("single-marker text should delegate to paragraphs:\ngot  %+v\nwant %+v", got, want)
	}

	// No markers at all.
	plain := "just some prose\n\nin two paragraphs"
	got = SegmentQA(plain, DefaultMaxChars)
	want = SegmentParagraphs(plain, DefaultMaxChars)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("marker-free text should delegate to paragraphs")
	}
}

func TestSegmentQA_Idempotent(t *testing.T) {
	text := "USER:\nfirst\nASSISTANT:\nsecond\nTOOL:\nresult\nUSER:\nthird\nASSISTANT:\nfourth"

	a := SegmentQA(text, DefaultMaxChars)
	b := SegmentQA(text, DefaultMaxChars)
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated calls on the same input must yield identical output")
	}
}

func TestSegmentQA_SliceCorrectness(t *testing.T) {
	text := "SYSTEM: setup\nUSER:\n  padded question  \nASSISTANT:\nanswer\nUNKNOWN:\ntail  "

	for i, c := range SegmentQA(text, DefaultMaxChars) {
		if c.Content != strings.TrimSpace(text[c.Start:c.End]) {
			t.Errorf("chunk %d: Content != TrimSpace(text[%d:%d])", i, c.Start, c.End)
		}
	}
}
