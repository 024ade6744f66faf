// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentParser: Extracts page texts from a PDF
//   - Tokenizer: Measures text length in model tokens
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndexBuilder: Constructs a searchable VectorIndex
//   - IndexStore: Whole-file index persistence
//   - ConfigStore: Application configuration
//
// # Pipeline Interfaces
//
//   - PostProcessor: One stage of the per-document chunk pipeline
//   - PostProcessorPipeline: The chained stages
package driven
