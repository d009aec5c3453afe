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
//   - MeetingStore: Meeting, status and analysis persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil or fail - the pipeline degrades gracefully:
//
//   - AudioNormalizer: Recording normalization. On failure the raw recording
//     is processed as-is.
//   - DiarizationEngine: Speaker detection. On failure evenly-spaced
//     synthetic turns are used.
//   - TranscriptionEngine: Speech-to-text. On failure a placeholder
//     transcript is used.
//   - ExtractionEngine: Per-chunk LLM extraction. Failed chunks are skipped;
//     if all fail, a deterministic fallback analysis is produced.
//   - ReportRenderer: Report artifact rendering. Failure is logged but does
//     not fail the run.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
