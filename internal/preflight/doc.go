// Package preflight provides readiness checks for the filesystem paths and
// provider endpoints Substation depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs every failure before the
//     sweep begins, so a dead mount or unreachable provider is visible
//     immediately instead of as a string of failed runs.
//   - The CLI "substation status" command renders the same results as a
//     table for operators.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
