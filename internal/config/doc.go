// Package config loads, normalizes, and validates Substation configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENSUBTITLES_API_KEY. The Config type centralizes every knob the daemon
// and CLI need, allowing provider credentials, path mappings, and sweep
// cadence to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
