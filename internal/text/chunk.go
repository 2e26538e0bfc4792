package text

import "strings"

// ChunkBySentence splits text into chunks at sentence boundaries (., !, ?),
// grouping consecutive sentences together while staying within maxChars per
// chunk. If maxChars is 0, no splitting is performed. A sentence that
// individually exceeds maxChars is kept intact as its own chunk.
//
// Chunks are synthesized independently, so each carries its own fade
// envelope; splitting at sentence boundaries keeps those fades on pauses
// where they are inaudible.
func ChunkBySentence(text string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{text}
	}

	sentences := splitSentences(text)
	if len(sentences) <= 1 {
		return []string{text}
	}

	chunks := make([]string, 0, len(sentences))
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, s := range sentences {
		switch {
		case current.Len() == 0:
			current.WriteString(s)
		case current.Len()+1+len(s) > maxChars:
			flush()
			current.WriteString(s)
		default:
			current.WriteByte(' ')
			current.WriteString(s)
		}
	}
	flush()

	return chunks
}

// splitSentences splits text on sentence-ending punctuation, keeping the
// terminator attached to its sentence. Empty segments are dropped.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	appendSegment := func(end int) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
	}

	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			appendSegment(i + 1)
			start = i + 1
		}
	}
	appendSegment(len(text))

	return sentences
}
