package html

import (
	"context"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific, higher than plaintext
}

// Extract returns the visible text of an HTML document.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	return StripTags(string(content)), nil
}

// skipped elements contribute no visible text.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
}

// block elements start and end a line.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true,
	atom.Section: true, atom.Article: true, atom.Figcaption: true, atom.Caption: true,
}

// Title returns the document <title>, or "" when there is none.
func Title(content string) string {
	doc, err := xhtml.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}
	n := findElement(doc, atom.Title)
	if n == nil {
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// StripTags removes markup and returns one non-empty line per block.
func StripTags(content string) string {
	doc, err := xhtml.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var b strings.Builder
	writeText(doc, &b)

	lines := strings.Split(b.String(), "\n")
	result := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

func writeText(n *xhtml.Node, b *strings.Builder) {
	switch n.Type {
	case xhtml.TextNode:
		b.WriteString(n.Data)
		return
	case xhtml.CommentNode, xhtml.DoctypeNode:
		return
	case xhtml.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br || n.DataAtom == atom.Hr {
			b.WriteByte('\n')
			return
		}
	}

	isBlock := n.Type == xhtml.ElementNode && block[n.DataAtom]
	if isBlock {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, b)
	}
	if isBlock {
		b.WriteByte('\n')
	}
}

func findElement(n *xhtml.Node, a atom.Atom) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
