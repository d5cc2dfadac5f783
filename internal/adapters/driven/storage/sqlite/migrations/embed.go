// Package migrations embeds the SQL schema for the catalog and project store.
package migrations

import "embed"

// FS holds the numbered *.up.sql and *.down.sql files, applied in order.
//
//go:embed *.sql
var FS embed.FS
