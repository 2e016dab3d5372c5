// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChunkStore: Chunk persistence and distance-ordered scans
//   - EmbeddingService: Text to fixed-dimension vectors
//   - TextChunker: Sentence-aware text splitting
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - EmbeddingValidator: Connectivity checks for provider settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driving package
package driven
