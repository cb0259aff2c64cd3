package report

import (
	"bytes"
	"io"
	"strings"
)

// ContentType of every assembled document.
const ContentType = "application/pdf"

// Document is an assembled report held in memory.
type Document struct {
	Layout Layout
	data   []byte
	pages  int
	lines  map[string][]line
}

// line is one drawn line of a field and the text consumed at its break:
// the whitespace run at a wrap, nothing at a cut inside a word, the line ending between paragraphs.
type line struct {
	text string
	brk  string
}

func (d *Document) Bytes() []byte { return d.data }

// Reader returns a fresh reader over the PDF bytes.
func (d *Document) Reader() io.Reader { return bytes.NewReader(d.data) }

func (d *Document) Size() int { return len(d.data) }

func (d *Document) PageCount() int { return d.pages }

// RenderedLines returns the wrapped lines drawn for the field key, in logical order.
func (d *Document) RenderedLines(key string) []string {
	lines := d.lines[key]
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text
	}
	return out
}

// RenderedText rebuilds the value of the field key from its drawn lines.
func (d *Document) RenderedText(key string) string {
	var b strings.Builder
	for _, l := range d.lines[key] {
		b.WriteString(l.text)
		b.WriteString(l.brk)
	}
	return b.String()
}
