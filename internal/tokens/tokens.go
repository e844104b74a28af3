// Package tokens estimates how many model tokens a piece of text costs.
package tokens

import (
	"strconv"
	"strings"
)

// Estimate gives a rough token count from the word count. Exact tokenization
// is model specific and not needed for a size hint.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 0.75 words per token for English text.
	n := int(float64(words) * 1.33)
	if n < 1 {
		n = 1
	}
	return n
}

// Format renders a count the way summaries print it: 950, 12.3k, 1.2M.
func Format(n int) string {
	switch {
	case n >= 1_000_000:
		return scaled(n, 1_000_000) + "M"
	case n >= 1_000:
		return scaled(n, 1_000) + "k"
	}
	return strconv.Itoa(n)
}

func scaled(n, unit int) string {
	s := strconv.FormatFloat(float64(n)/float64(unit), 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
