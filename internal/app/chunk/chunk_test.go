package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joined(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}

	return strings.Join(parts, " ")
}

func TestSplitShortTextSingleSegment(t *testing.T) {
	segments := Split("Just a short chapter.", 100)

	require.Len(t, segments, 1)
	assert.Equal(t, 0, segments[0].Index)
	assert.Equal(t, "Just a short chapter.", segments[0].Text)
}

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, Split("", 100))
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	text := "aaa.\n\nbbb.\n\nccc."

	segments := Split(text, 10)

	require.Len(t, segments, 2)
	assert.Equal(t, "aaa.\n\nbbb.", segments[0].Text)
	assert.Equal(t, "ccc.", segments[1].Text)
}

func TestSplitOversizedParagraphAtSentences(t *testing.T) {
	segments := Split("One two. Three four. Five six.", 12)

	require.Len(t, segments, 3)
	assert.Equal(t, "One two.", segments[0].Text)
	assert.Equal(t, "Three four.", segments[1].Text)
	assert.Equal(t, "Five six.", segments[2].Text)
}

func TestSplitOversizedSentenceAtWhitespace(t *testing.T) {
	segments := Split("aa bb cc", 5)

	require.Len(t, segments, 2)
	assert.Equal(t, "aa bb", segments[0].Text)
	assert.Equal(t, "cc", segments[1].Text)
}

func TestSplitHardCutLongWord(t *testing.T) {
	segments := Split("abcdefghij", 4)

	require.Len(t, segments, 3)
	assert.Equal(t, "abcd", segments[0].Text)
	assert.Equal(t, "efgh", segments[1].Text)
	assert.Equal(t, "ij", segments[2].Text)
}

func TestSplitQuestionAndExclamation(t *testing.T) {
	segments := Split("Really?! Yes. \"Sure.\" Done.", 10)

	require.NotEmpty(t, segments)
	assert.Equal(t, "Really?!", segments[0].Text)
}

func TestSplitProperties(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
	}{
		{
			name:  "paragraphs",
			text:  "First paragraph here.\n\nSecond one, a bit longer than the first.\n\nThird.",
			limit: 30,
		},
		{
			name:  "long sentences",
			text:  "This sentence keeps going and going without any terminal punctuation at all for quite a while",
			limit: 25,
		},
		{
			name:  "unicode",
			text:  "Зимой было холодно. Весной стало теплее. Летом пришла жара.",
			limit: 25,
		},
		{
			name:  "tiny limit",
			text:  "a b c d e f g h i j k l m n o p",
			limit: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := Split(tt.text, tt.limit)
			require.NotEmpty(t, segments)

			for i, seg := range segments {
				assert.Equal(t, i, seg.Index)
				assert.NotEmpty(t, strings.TrimSpace(seg.Text))
				assert.LessOrEqual(t, utf8.RuneCountInString(seg.Text), tt.limit,
					"segment %d exceeds limit: %q", i, seg.Text)
			}

			// whitespace-normalized round trip
			assert.Equal(t, normalize(tt.text), normalize(joined(segments)))
		})
	}
}
