package overlay

import (
	"strings"
	"testing"
)

// charWidth measures 10px per character, spaces included.
func charWidth(s string) float64 {
	return float64(len(s)) * 10
}

func TestWrapText_TwoWordsPerLine(t *testing.T) {
	// "the quick" is 90px, "the quick brown" is 150px: a 100px width
	// fits exactly two words per line.
	lines := WrapText("the quick brown fox", 100, charWidth)

	if len(lines) != 2 {
		t.Fatalf("expected exactly 2 lines, got %d: %v", len(lines), lines)
	}
	for _, line := range lines {
		if charWidth(line) > 100 {
			t.Errorf("line %q exceeds the configured width", line)
		}
	}
	if rejoined := strings.Join(lines, " "); rejoined != "the quick brown fox" {
		t.Errorf("expected lines to reassemble the original text, got %q", rejoined)
	}
}

func TestWrapText_OverlongWordOwnsItsLine(t *testing.T) {
	lines := WrapText("hi supercalifragilistic no", 100, charWidth)

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[1] != "supercalifragilistic" {
		t.Errorf("expected the over-long word on its own line, got %q", lines[1])
	}
}

func TestWrapText_EmptyAndWhitespace(t *testing.T) {
	if lines := WrapText("", 100, charWidth); lines != nil {
		t.Errorf("expected nil lines for empty text, got %v", lines)
	}
	if lines := WrapText("   ", 100, charWidth); lines != nil {
		t.Errorf("expected nil lines for whitespace text, got %v", lines)
	}
}

func TestWrapText_SingleShortWord(t *testing.T) {
	lines := WrapText("hey", 100, charWidth)
	if len(lines) != 1 || lines[0] != "hey" {
		t.Errorf("unexpected lines: %v", lines)
	}
}

func TestLayoutBubble_HeightFromLines(t *testing.T) {
	style := DefaultBubbleStyle()
	style.LineHeight = 20
	style.PaddingY = 10
	style.MinHeight = 40

	layout := LayoutBubble("the quick brown fox jumps over the lazy dog again and again", style, charWidth)
	if len(layout.Lines) < 2 {
		t.Fatalf("expected multi-line layout, got %v", layout.Lines)
	}
	want := 20*float64(len(layout.Lines)) + 10
	if layout.Height != want {
		t.Errorf("expected height %f, got %f", want, layout.Height)
	}
}

func TestLayoutBubble_MinimumHeight(t *testing.T) {
	style := DefaultBubbleStyle()
	style.LineHeight = 10
	style.PaddingY = 4
	style.MinHeight = 40

	layout := LayoutBubble("hi", style, charWidth)
	if layout.Height != 40 {
		t.Errorf("expected minimum height 40, got %f", layout.Height)
	}
	if layout.Width != style.MaxWidth {
		t.Errorf("expected bubble width %f, got %f", style.MaxWidth, layout.Width)
	}
}
