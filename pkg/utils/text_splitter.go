package utils

import (
	"strings"
	"unicode"
)

// SplitText splits text into chunks of at most chunkSize runes, each overlapping the
// previous one by overlap runes. A cut is moved back to the nearest whitespace when one
// exists in the second half of the window.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	totalLen := len(runes)
	if chunkSize <= 0 || totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; {
		end := i + chunkSize
		if end >= totalLen {
			chunks = append(chunks, strings.TrimSpace(string(runes[i:])))
			break
		}
		end = breakAtSpace(runes, i, end)

		chunks = append(chunks, strings.TrimSpace(string(runes[i:end])))

		next := end - overlap
		if next <= i {
			next = i + step
		}
		i = next
	}

	return chunks
}

func breakAtSpace(runes []rune, start, end int) int {
	for j := end; j > start+(end-start)/2; j-- {
		if unicode.IsSpace(runes[j-1]) {
			return j
		}
	}
	return end
}

// StripQuotes removes every single-quote character. Retrieved chunks and model output
// pass through it before they are embedded into another prompt.
func StripQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "")
}
