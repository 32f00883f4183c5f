package scholarly

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser cleans scholarly article text.
type Normaliser struct{}

// New creates a new scholarly text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the normaliser name.
func (n *Normaliser) Name() string {
	return "scholarly"
}

// Normalise returns the cleaned text.
func (n *Normaliser) Normalise(text string) string {
	return Normalize(text)
}

// Pre-compiled patterns.
var (
	// Page labels, running heads and journal citation lines. Classes are
	// Unicode-wide so accented journal names match.
	boilerplate = regexp.MustCompile(
		`(Page \p{Nd}+|Author Manuscript|J [\p{L}\p{N}_\s\p{Z}().\-]+;\p{Nd}+:\p{Nd}+–\p{Nd}+\.?)`)

	// DOI tokens. RE2's \b is ASCII-only, so the word boundary is spelled
	// out and the preceding character is kept through ${1}.
	doiToken = regexp.MustCompile(`(^|[^\p{L}\p{N}_])doi:[^\s\p{Z}]+`)

	// Start of a front-matter block.
	blockMarker = regexp.MustCompile(`(?i)(author|manuscript|correspondence|pmc)`)

	newlineRuns = regexp.MustCompile(`\n+`)
)

// Normalize applies the cleaning rules until the text stops changing.
// Every rule only deletes characters, so the loop terminates.
func Normalize(text string) string {
	for {
		next := normalizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func normalizeOnce(text string) string {
	text = boilerplate.ReplaceAllString(text, "")
	text = doiToken.ReplaceAllString(text, "${1}")
	text = removeBlocks(text)
	text = newlineRuns.ReplaceAllString(text, "\n")
	text = joinHyphenated(text)
	return strings.TrimSpace(text)
}

// removeBlocks deletes each marker and everything after it up to, but not
// including, the next blank line or the end of text. At least one character
// must follow the marker.
func removeBlocks(text string) string {
	var b strings.Builder
	pos := 0
	for pos < len(text) {
		loc := blockMarker.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end >= len(text) {
			break
		}

		stop := len(text)
		if i := strings.Index(text[end+1:], "\n\n"); i >= 0 {
			stop = end + 1 + i
		}

		b.WriteString(text[pos:start])
		pos = stop
	}
	b.WriteString(text[pos:])
	return b.String()
}

// joinHyphenated removes "-\n" when it sits between two word characters.
func joinHyphenated(text string) string {
	if !strings.Contains(text, "-\n") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "-\n") && i > 0 {
			before, _ := utf8.DecodeLastRuneInString(text[:i])
			after, _ := utf8.DecodeRuneInString(text[i+2:])
			if isWord(before) && isWord(after) {
				i += 2
				continue
			}
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
