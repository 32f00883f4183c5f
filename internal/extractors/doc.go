// Package extractors provides implementations of the Extractor interface
// for the document formats literature arrives in. Each extractor knows how
// to turn the bytes of one MIME type into plain text, one paragraph or
// layout line per "\n".
//
// Extractors are registered with the Registry at startup.
package extractors
