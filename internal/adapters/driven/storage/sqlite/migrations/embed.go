// Package migrations holds the versioned schema of the embedding index.
package migrations

import "embed"

// FS holds the numbered .sql files applied in order by the index on open.
//
//go:embed *.sql
var FS embed.FS
