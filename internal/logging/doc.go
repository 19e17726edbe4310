// Package logging is the single place loggers come from. It builds slog
// loggers with the console or JSON handler, carries the canonical field
// names (item_id, run_id, provider, language), and derives per-run log
// fields from a context via WithContext.
//
// Construct through New or NewNop rather than slog directly so every
// subsystem writes lines with the same shape; CleanupOldLogs handles
// age-based pruning of the daemon's log directory.
package logging
