// Package chunk splits narration text into ordered, bounded segments sized
// for a single synthesis call.
package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLimit mirrors the synthesis model's reliable input size: roughly
// 2000 tokens at ~4 characters per token.
const DefaultLimit = 8000

// Segment is one bounded slice of narration text. Index is its position in
// the original document; audio produced from segments must be reassembled in
// Index order.
type Segment struct {
	Index int
	Text  string
}

// Split cuts text into segments of at most limit runes each, preferring to
// break at paragraph boundaries, then sentence boundaries, then whitespace,
// then a hard cut. Segments are non-empty and contiguous: joining them with
// single spaces reconstructs text modulo whitespace collapsing.
func Split(text string, limit int) []Segment {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var parts []string

	cur := strings.Builder{}
	curLen := 0

	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, unit := range units(text, limit) {
		unitLen := utf8.RuneCountInString(unit)

		// +2 for the paragraph separator
		if curLen > 0 && curLen+2+unitLen > limit {
			flush()
		}

		if curLen > 0 {
			cur.WriteString("\n\n")
			curLen += 2
		}

		cur.WriteString(unit)
		curLen += unitLen
	}

	flush()

	segments := make([]Segment, 0, len(parts))
	for i, p := range parts {
		segments = append(segments, Segment{Index: i, Text: p})
	}

	return segments
}

// units yields paragraph-sized pieces, each guaranteed to fit in limit.
// Oversized paragraphs are broken down at sentence boundaries first.
func units(text string, limit int) []string {
	var out []string

	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if utf8.RuneCountInString(p) <= limit {
			out = append(out, p)
			continue
		}

		out = append(out, splitParagraph(p, limit)...)
	}

	return out
}

// splitParagraph packs sentences greedily up to limit; a single sentence
// longer than limit falls through to whitespace splitting.
func splitParagraph(p string, limit int) []string {
	var out []string

	cur := strings.Builder{}
	curLen := 0

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
			curLen = 0
		}
	}

	for _, sentence := range sentences(p) {
		sentenceLen := utf8.RuneCountInString(sentence)

		if sentenceLen > limit {
			flush()
			out = append(out, splitAtWhitespace(sentence, limit)...)
			continue
		}

		if curLen > 0 && curLen+1+sentenceLen > limit {
			flush()
		}

		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}

		cur.WriteString(sentence)
		curLen += sentenceLen
	}

	flush()

	return out
}

// sentences splits a paragraph after terminal punctuation followed by
// whitespace. Trailing closers like quotes and parens stay with the sentence.
func sentences(p string) []string {
	var out []string

	runes := []rune(p)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}

		// swallow runs like "?!" and closing quotes/brackets
		j := i + 1
		for j < len(runes) && (isTerminator(runes[j]) || isCloser(runes[j])) {
			j++
		}

		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}

		s := strings.TrimSpace(string(runes[start:j]))
		if s != "" {
			out = append(out, s)
		}

		start = j
		i = j - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}

	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}

// splitAtWhitespace cuts s into pieces of at most limit runes, breaking at
// the last whitespace at or before the limit, or hard-cutting when a single
// word exceeds it.
func splitAtWhitespace(s string, limit int) []string {
	var out []string

	runes := []rune(s)

	for len(runes) > 0 {
		if len(runes) <= limit {
			out = append(out, strings.TrimSpace(string(runes)))
			break
		}

		cut := -1
		for i := limit; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}

		if cut <= 0 {
			cut = limit
		}

		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			out = append(out, piece)
		}

		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}

	return out
}
