// Package diag defines the diagnostic model shared by all pipeline phases.
//
//   - Diagnostic is the central record: severity, stable numeric code,
//     message, primary span, optional notes.
//   - Bag accumulates diagnostics with a limit and deterministic ordering.
//   - Reporter decouples producers (builders, validators) from storage.
//
// Codes are partitioned into numeric bands: 3000-3099 name resolution,
// 3100-3199 types, 4000-4099 control flow, 9000-9099 internal invariant
// violations. Invariant codes never describe user errors; they indicate a
// defect in a builder and are rendered with an "internal compiler error"
// prefix by the CLI.
//
// Package diag performs no formatting or IO beyond String helpers;
// rendering lives with the callers.
package diag
