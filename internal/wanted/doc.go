// Package wanted runs the daemon's periodic sweep over library items that
// still miss subtitles. One worker goroutine serializes all acquisition
// runs: sweeps enqueue every wanted item, and the daemon API enqueues
// individual items through the same channel.
package wanted
