// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The resolution engine is split into small pieces that are usable on
// their own:
//
//   - RankSources: source priority order from the user's SourceRows
//   - Accepts: the document filter predicate
//   - SearchService: per-source fan-out, merge and memoisation
//   - DFCResolver: double-faced back lookup
//   - BuildProject: slot composition from processed lines
//
// Services are pure Go with no CGO. Their only external dependencies are
// golang.org/x/sync and github.com/google/uuid.
package services
