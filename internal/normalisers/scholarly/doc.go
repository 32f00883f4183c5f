// Package scholarly provides a Normaliser for text extracted from journal
// articles and author manuscripts. It strips page labels, running heads,
// citation lines, DOIs and correspondence blocks, collapses blank lines and
// rejoins words hyphenated across line breaks.
//
// Block removal is a heuristic: a marker such as "Author" anywhere in the
// text removes everything up to the next blank line, which can delete body
// text that merely mentions an author.
package scholarly
