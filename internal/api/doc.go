// Package api defines wire-format types and converters for the daemon's HTTP
// API. It translates internal library models into transport-friendly DTOs so
// consumers can render status, wanted, and history payloads without coupling
// to internal types.
//
// DTOs use camelCase JSON tags. Internal enums (library.Kind, history actions)
// are exposed as lowercase strings. Timestamps use RFC3339 with milliseconds.
// Missing-language state is expanded from its stored form into a tag list so
// clients never parse the persistence format.
package api
