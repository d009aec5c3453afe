// Package domain defines the core business entities for minute.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Meeting: A recorded meeting and its processing lifecycle
//   - Segment: A speaker-attributed slice of transcript
//   - Chunk: A bounded time window of segments processed as one extraction unit
//   - Fragment: The validated structured-extraction output for one chunk
//   - MergedAnalysis: The final de-duplicated meeting report
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
