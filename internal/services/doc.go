// Package services defines shared utilities consumed by the acquisition
// pipeline and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, run IDs, provider names, and
//     language tags for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent status tokens for history rows and the daemon API.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across components.
package services
