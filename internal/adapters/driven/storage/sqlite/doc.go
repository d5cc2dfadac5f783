// Package sqlite provides a SQLite-backed card catalog and project store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database connection serves several driven ports:
//
//   - SourceRegistry: the search sources, in registry order
//   - SearchBackend: exact and fuzzy card lookups per source
//   - DFCSource: the double-faced card pairing table
//   - CardStore: hydration of result identifiers
//   - ProjectStore: saved projects
//
// # Schema
//
// The schema is managed through numbered migrations embedded from the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.cardfill/data/catalog.db
package sqlite
