// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SearchBackend: Returns candidate card documents per source
//   - SourceRegistry: Lists the known sources, loaded once at startup
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DFCSource: Double-faced card pairs. Without it, backs are never auto-linked.
//   - CardStore: Card document cache. Without it, identifiers cannot be hydrated.
//   - ProjectStore: Project persistence. Without it, projects live only in memory.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
