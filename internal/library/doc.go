// Package library persists media items, acquired subtitles, history, and
// provider throttle state in SQLite.
package library
