package overlay

import (
	"strings"
)

// MeasureFunc returns the rendered pixel width of a string.
type MeasureFunc func(s string) float64

// BubbleStyle configures caption bubble layout.
type BubbleStyle struct {
	MaxWidth   float64 // bubble box width, px
	PaddingX   float64 // horizontal interior padding, px
	PaddingY   float64 // vertical interior padding, px
	LineHeight float64 // px
	MinHeight  float64 // px
	CornerR    float64 // corner radius, px
	TailWidth  float64 // px
	TailHeight float64 // px
}

// DefaultBubbleStyle returns the reference bubble styling.
func DefaultBubbleStyle() BubbleStyle {
	return BubbleStyle{
		MaxWidth:   300,
		PaddingX:   12,
		PaddingY:   16,
		LineHeight: 18,
		MinHeight:  40,
		CornerR:    10,
		TailWidth:  16,
		TailHeight: 10,
	}
}

// BubbleLayout is the computed geometry for one caption bubble.
type BubbleLayout struct {
	Lines  []string
	Width  float64
	Height float64
}

// WrapText greedily wraps text into lines whose measured width stays
// within maxWidth. Words never split mid-word; a line is flushed when
// appending the next word would exceed the width, unless the line is
// still empty, so a single over-long word occupies its own line.
func WrapText(text string, maxWidth float64, measure MeasureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && measure(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// LayoutBubble wraps the caption text against the bubble's interior
// width and computes the bubble height.
func LayoutBubble(text string, style BubbleStyle, measure MeasureFunc) BubbleLayout {
	interior := style.MaxWidth - 2*style.PaddingX
	lines := WrapText(text, interior, measure)

	height := style.LineHeight*float64(len(lines)) + style.PaddingY
	if height < style.MinHeight {
		height = style.MinHeight
	}

	return BubbleLayout{
		Lines:  lines,
		Width:  style.MaxWidth,
		Height: height,
	}
}
