package styles

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0

	// titleShare is the fraction of the card height available to the title.
	titleShare = 0.3
)

// FontSize returns the title font size that fits c's title on one line.
func FontSize(c Card) float64 {
	return fontSizeFor(c.W, c.H*titleShare, len(c.Title))
}

// BodyFontSize returns the font size used for metric rows.
func BodyFontSize(c Card) float64 {
	rows := max(1, len(c.Lines)+2)
	return max(fontSizeMin, min(FontSize(c)*0.8, c.H/float64(rows)*0.75))
}

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// TruncateLabel shortens s so that it fits into width at the given font size.
func TruncateLabel(s string, width, fontSize float64) string {
	charWidth := fontSize * fontCharWidth
	maxChars := int(width * fontWidthRatio / charWidth)
	if maxChars < 3 {
		maxChars = 3
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars-2]) + ".."
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// FormatAmount formats a monetary figure with two decimals and thousands
// separators, e.g. 12345.5 -> "12,345.50".
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// F formats a coordinate compactly for SVG output.
func F(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
