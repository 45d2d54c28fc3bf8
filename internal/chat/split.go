package chat

import (
	"regexp"
	"strings"
)

// wordsPerChunk is the group size used when a reply is not split by sentence.
const wordsPerChunk = 6

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`) //nolint:gochecknoglobals // compiled once

// SplitForStreaming cuts a reply into display chunks. Replies with at least
// two sentences are streamed sentence by sentence, punctuation included;
// otherwise words are grouped six at a time. A reply with no words is sent
// as a single chunk.
func SplitForStreaming(text string) []string {
	var sentences []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) >= 2 {
		return sentences
	}

	words := strings.Fields(text)
	chunks := make([]string, 0, (len(words)+wordsPerChunk-1)/wordsPerChunk)
	for i := 0; i < len(words); i += wordsPerChunk {
		end := min(i+wordsPerChunk, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
