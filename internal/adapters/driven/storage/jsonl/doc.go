// Package jsonl implements the chunk store as a newline-delimited JSON file.
//
// Each line holds one chunk:
//
//	{"text": "...", "metadata": {"search_term": "...", "source": "...", "url": "...", "year": 2019}}
//
// The zero-based position of a record in the file is its ordinal, from which the
// chunk ID is derived. The file is append-only: writers never rewrite
// existing lines, and re-ingesting a source appends duplicate records.
package jsonl
