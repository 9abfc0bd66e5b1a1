// Package diag defines the diagnostic model the CLI uses to report results.
//
// The checker itself reports exactly one ill-formedness error per program;
// diag turns such results, together with I/O, decode and configuration
// failures, into Diagnostic records that can be collected in a Bag, sorted
// deterministically and rendered by the command layer.
//
// # Data model
//
//   - Stage: whether the file failed to read or was judged ill-formed.
//   - Code: compact numeric identifier with a stable string form (codes.go).
//   - Message: the rule message or the wrapped error text.
//   - Location: the program file and, for ill-formedness, the function and
//     block the checker stopped at.
//   - Notes: optional secondary messages.
package diag
