// Package daemon coordinates the long-running Substation process.
//
// It wires configuration, the library store, the provider registry, and the
// wanted-sweep manager into a single lifecycle with flock-based locking to
// prevent multiple instances. The daemon also hosts the JSON status API that
// the CLI and other consumers poll.
//
// Keep orchestration logic here: acquisition semantics live in their own
// packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
