// Package filesystem provides a connector over a local directory of papers.
//
// Search walks the directory for PDF, HTML, Markdown and plain-text files,
// skipping hidden entries. Watch uses fsnotify to emit a candidate whenever a
// supported file is created or rewritten, with events debounced so an editor's
// burst of writes yields one candidate.
package filesystem
