// Package html provides an Extractor for HTML documents.
// It parses the document with golang.org/x/net/html and keeps the visible
// text, dropping scripts, styles and the head. Block elements become line
// breaks so paragraphs survive into the chunker.
package html
