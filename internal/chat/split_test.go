package chat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/parley/internal/chat"
)

func TestSplitForStreaming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "sentences",
			text: "Hi there. How are you? Great.",
			want: []string{"Hi there.", "How are you?", "Great."},
		},
		{
			name: "repeated punctuation stays with its sentence",
			text: "Wait!! Really?! ok",
			want: []string{"Wait!!", "Really?!", "ok"},
		},
		{
			name: "single sentence falls back to word groups",
			text: "one two three four five six seven.",
			want: []string{"one two three four five six", "seven."},
		},
		{
			name: "fourteen words without punctuation",
			text: "a b c d e f g h i j k l m n",
			want: []string{"a b c d e f", "g h i j k l", "m n"},
		},
		{
			name: "collapses whitespace inside word groups",
			text: "  lots   of\tspace  ",
			want: []string{"lots of space"},
		},
		{
			name: "empty text is one chunk",
			text: "",
			want: []string{""},
		},
		{
			name: "punctuation only is one chunk",
			text: "...",
			want: []string{"..."},
		},
		{
			name: "whitespace only is one chunk",
			text: "   ",
			want: []string{"   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, chat.SplitForStreaming(tt.text))
		})
	}
}

func TestSplitForStreaming_WordGroupCount(t *testing.T) {
	t.Parallel()

	for words := 1; words <= 30; words++ {
		text := strings.TrimSpace(strings.Repeat("w ", words))
		got := chat.SplitForStreaming(text)
		assert.Len(t, got, (words+5)/6, "words=%d", words)
	}
}
