package blogservice

import (
	"fmt"
	"strings"
)

const wordsPerMinute = 200

// CalculateReadingTime derives the display string stored on a blog from its
// body: whitespace-separated word count divided by an average reading speed,
// rounded up. Recomputed on every body change, never settable directly.
func CalculateReadingTime(body string) string {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}
