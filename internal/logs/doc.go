// Package logs reads daemon log files on behalf of the CLI: a bounded tail
// of the most recent lines plus a polling follow mode for live output.
package logs
