package post

import (
	"strconv"
	"strings"
)

// WordsPerMinute is the reading rate used by EstimateReadTime.
const WordsPerMinute = 200

// EstimateReadTime returns a label such as "3 min read" for text.
// Words are whitespace-separated tokens; the minute count is rounded up.
// Blank text has no words and yields "0 min read".
func EstimateReadTime(text string) string {
	words := len(strings.Fields(text))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	return strconv.Itoa(minutes) + " min read"
}
