// Package language resolves the stored missing-languages state of a library
// item into the ordered subtitle wants an acquisition run works through.
//
// All language-related conversions (code normalization, display names, tag
// and filename forms) are consolidated here to avoid duplication across
// provider and pipeline packages.
package language
