// Package domain defines the core business entities for cardfill.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CardDocument: One matched card image offered by a source
//   - SourceDocument: A card image source and its SourceRow priority entry
//   - SearchQuery / SearchSettings: What to look for and how
//   - SearchResultsForQuery: Ordered identifiers per card type
//   - Project: Print-ordered slots of front/back members plus a cardback
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
