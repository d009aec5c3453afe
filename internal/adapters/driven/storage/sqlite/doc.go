// Package sqlite provides a SQLite-based implementation of the meeting store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. A single database
// connection backs the driven.MeetingStore port: meeting records, processing
// statuses, merged analyses and transcripts.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Run outputs (analyses, transcripts) are stored as
// JSON documents keyed by meeting id and replaced wholesale on reprocessing.
//
// # Data Location
//
// By default, the database is stored at ~/.minute/data/meetings.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
