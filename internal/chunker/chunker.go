// Package chunker slices oversized texts into fixed-width pieces for
// batch translation. Slicing is positional, not boundary-aware: chunks
// concatenate back to the original text exactly, which the writeback
// reassembly depends on.
package chunker

import "unicode/utf8"

// Split slices text into contiguous, non-overlapping chunks of exactly
// maxChars unicode code points each; the final chunk may be shorter.
// The concatenation of the returned chunks equals text.
// If maxChars is zero or negative, or text fits within maxChars, a
// single-element slice is returned.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Count returns the number of chunks Split would produce for a text of
// length runeLen, without materialising them.
func Count(runeLen, maxChars int) int {
	if maxChars <= 0 || runeLen <= maxChars {
		return 1
	}
	return (runeLen + maxChars - 1) / maxChars
}
