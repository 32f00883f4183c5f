// Package normalisers provides implementations of the Normaliser interface.
// A normaliser cleans text that has already been extracted from a document,
// removing publisher boilerplate and layout artefacts before chunking.
//
// Byte-level format conversion (PDF, HTML) lives in the extractors package.
package normalisers
