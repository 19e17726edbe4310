// Package notifications delivers acquisition events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover the acquisition milestones so the
// orchestrator can emit consistent, user-friendly messages without
// duplicating HTTP glue.
//
// Extend this package if you need alternative transports; acquisition code
// depends only on the simple Service interface.
package notifications
