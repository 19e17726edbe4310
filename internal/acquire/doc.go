// Package acquire runs the end-to-end subtitle acquisition flow for a
// library item: resolve the media path, work out which languages are still
// missing, walk the active providers for each want, and land the winning
// subtitle next to the media file with the bookkeeping that follows.
//
// A run is fatal only when the item is unknown or its media file is not
// reachable. Everything past that point degrades per want: provider
// failures, throttles, and materialization errors are logged and the run
// moves on, returning whatever it did acquire.
package acquire
