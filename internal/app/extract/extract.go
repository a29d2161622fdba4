// Package extract turns a Markdown document into narration-ready plain text.
//
// Structural syntax (heading markers, emphasis, link targets, list bullets,
// blockquote markers) is dropped while the readable text is kept. Code is not
// narration: fenced blocks, indented blocks, inline code and raw HTML are
// removed entirely. Images are dropped including their alt text.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrEmptyInput means the document contained nothing narratable.
var ErrEmptyInput = errors.New("nothing to narrate")

var md = goldmark.New()

// Narration extracts plain narration text from raw Markdown. Paragraph-level
// blocks are separated by blank lines so the chunker can split at paragraph
// boundaries. Malformed Markdown never errors; goldmark degrades it to text.
func Narration(source []byte) (string, error) {
	doc := md.Parser().Parse(text.NewReader(source))

	var b strings.Builder

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindCodeSpan,
			ast.KindImage, ast.KindHTMLBlock, ast.KindRawHTML:
			if entering {
				return ast.WalkSkipChildren, nil
			}

		case ast.KindText:
			if entering {
				t := n.(*ast.Text)
				b.Write(t.Segment.Value(source))

				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte(' ')
				}
			}

		case ast.KindString:
			if entering {
				b.Write(n.(*ast.String).Value)
			}

		case ast.KindAutoLink:
			if entering {
				b.Write(n.(*ast.AutoLink).Label(source))
			}

		default:
			if !entering && n.Type() == ast.TypeBlock {
				b.WriteString("\n\n")
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk markdown ast: %w", err)
	}

	out := normalize(b.String())
	if out == "" {
		return "", ErrEmptyInput
	}

	return out, nil
}

// normalize collapses runs of spaces inside paragraphs and runs of blank
// lines between them.
func normalize(s string) string {
	paragraphs := strings.Split(s, "\n\n")

	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}

	return strings.Join(out, "\n\n")
}
